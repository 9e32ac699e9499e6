package repository

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// ProfileRepository loads user profiles. GetProfile returns a usable default
// profile when the user has none stored.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, profile *model.UserProfile) error
}
