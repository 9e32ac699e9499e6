package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo stores the whole profile as one JSONB document. Profiles are
// read once per run and written by hand; row-per-field gains nothing here.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetProfile falls back to the default profile row, then to an empty profile,
// so the pipeline always has something usable to run with.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := r.fetch(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if userID != model.DefaultProfileID {
		if profile, err := r.fetch(ctx, model.DefaultProfileID); err == nil {
			return profile, nil
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return &model.UserProfile{ID: userID}, nil
}

func (r *ProfileRepo) fetch(ctx context.Context, id string) (*model.UserProfile, error) {
	row, err := pickRow(ctx, r.pool, nil,
		`SELECT payload, updated_at FROM profiles WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	var payload []byte
	var updatedAt time.Time
	if err := row.Scan(&payload, &updatedAt); err != nil {
		return nil, err
	}
	var profile model.UserProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	profile.ID = id
	profile.UpdatedAt = updatedAt
	return &profile, nil
}

func (r *ProfileRepo) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	if profile.ID == "" {
		profile.ID = model.DefaultProfileID
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", profile.ID, err)
	}
	_, err = execSQL(ctx, r.pool, nil, `
INSERT INTO profiles (id, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET payload=EXCLUDED.payload, updated_at=now();`,
		profile.ID, payload)
	return err
}
