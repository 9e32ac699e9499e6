package repository

import (
	"context"
	"time"

	"job-autopilot/internal/domain/model"
)

// JobRepository persists discovered jobs. (provider, provider_job_id) is the
// dedup key: Save must update an existing row instead of inserting a second one.
type JobRepository interface {
	// Save upserts a raw job and returns the stored id. inserted is false when
	// an existing row was updated via the dedup key.
	Save(ctx context.Context, tx Tx, raw *model.RawJob) (id string, inserted bool, err error)

	// ListPending returns up to limit pending jobs, oldest discovery first.
	ListPending(ctx context.Context, limit int) ([]*model.Job, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)

	// UpdateStatus is the only mutation the queue processor performs on a job.
	UpdateStatus(ctx context.Context, id string, status model.JobStatus) error

	// MarkStale flags analyzed/rejected jobs not touched since cutoff.
	MarkStale(ctx context.Context, cutoff time.Time) (int64, error)

	// PurgeStale deletes stale jobs not touched since cutoff.
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}
