package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/ports/repository"
)

// RetentionUseCase ages out terminal jobs: stale-mark after StaleAfter,
// purge after PurgeAfter. Pending jobs are never touched.
type RetentionUseCase struct {
	jobs       repository.JobRepository
	staleAfter time.Duration
	purgeAfter time.Duration
	log        *zerolog.Logger
}

func NewRetentionUseCase(jobs repository.JobRepository, staleAfterDays, purgeAfterDays int, logger *zerolog.Logger) *RetentionUseCase {
	l := logger.With().Str("component", "Retention").Logger()
	return &RetentionUseCase{
		jobs:       jobs,
		staleAfter: time.Duration(staleAfterDays) * 24 * time.Hour,
		purgeAfter: time.Duration(purgeAfterDays) * 24 * time.Hour,
		log:        &l,
	}
}

// Sweep runs both passes sequentially and reports counts.
func (uc *RetentionUseCase) Sweep(ctx context.Context) (marked, purged int64, err error) {
	now := time.Now()

	marked, err = uc.jobs.MarkStale(ctx, now.Add(-uc.staleAfter))
	if err != nil {
		return 0, 0, err
	}
	purged, err = uc.jobs.PurgeStale(ctx, now.Add(-uc.purgeAfter))
	if err != nil {
		return marked, 0, err
	}

	if marked > 0 || purged > 0 {
		uc.log.Info().Int64("marked", marked).Int64("purged", purged).Msg("retention sweep complete")
	}
	return marked, purged, nil
}
