package redis

import (
	"context"
	"fmt"
	"time"

	"job-autopilot/internal/domain/model"
)

// RateLimiter throttles submissions per ATS provider with a fixed window
// counter. Hammering a career site is the fastest way to earn a captcha.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}

func ProviderSubmitKey(provider model.Provider) string {
	return fmt.Sprintf("rate:submit:%s", provider)
}
