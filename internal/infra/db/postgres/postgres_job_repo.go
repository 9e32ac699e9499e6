package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// Save upserts on the (provider, provider_job_id) dedup key. Re-ingesting a
// posting refreshes its fields in place and never resets its status.
// xmax = 0 distinguishes a fresh insert from a conflict update.
func (r *JobRepo) Save(ctx context.Context, tx repository.Tx, raw *model.RawJob) (string, bool, error) {
	const q = `
INSERT INTO jobs (
  id, provider, provider_job_id, title, company, location, is_remote,
  description, url, status, discovered_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11
) ON CONFLICT (provider, provider_job_id) DO UPDATE SET
  title=EXCLUDED.title, company=EXCLUDED.company, location=EXCLUDED.location,
  is_remote=EXCLUDED.is_remote, description=EXCLUDED.description,
  url=EXCLUDED.url, updated_at=EXCLUDED.updated_at, stale=FALSE
RETURNING id, (xmax = 0) AS inserted;`

	now := time.Now()
	row, err := pickRow(ctx, r.pool, tx, q,
		uuid.NewString(), raw.Provider, raw.ProviderJobID, raw.Title, raw.Company,
		raw.Location, raw.IsRemote, raw.Description, raw.URL, model.JobStatusPending, now)
	if err != nil {
		return "", false, err
	}
	var id string
	var inserted bool
	if err := row.Scan(&id, &inserted); err != nil {
		return "", false, fmt.Errorf("save job %s/%s: %w", raw.Provider, raw.ProviderJobID, err)
	}
	return id, inserted, nil
}

const jobColumns = `id, provider, provider_job_id, title, company, location, is_remote,
       description, url, status, discovered_at, updated_at`

// ListPending returns pending jobs oldest discovery first so nothing starves.
func (r *JobRepo) ListPending(ctx context.Context, limit int) ([]*model.Job, error) {
	q := fmt.Sprintf(`SELECT %s FROM jobs WHERE status=$1 ORDER BY discovered_at ASC LIMIT $2;`, jobColumns)
	rows, err := pickRows(ctx, r.pool, nil, q, model.JobStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	q := fmt.Sprintf(`SELECT %s FROM jobs WHERE id=$1;`, jobColumns)
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	tag, err := execSQL(ctx, r.pool, nil,
		`UPDATE jobs SET status=$2, updated_at=now() WHERE id=$1;`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkStale flags terminal jobs untouched since cutoff. Pending jobs are
// never aged out.
func (r *JobRepo) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := execSQL(ctx, r.pool, nil, `
UPDATE jobs SET stale=TRUE
 WHERE stale=FALSE AND status <> $1 AND updated_at < $2;`, model.JobStatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *JobRepo) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := execSQL(ctx, r.pool, nil,
		`DELETE FROM jobs WHERE stale=TRUE AND updated_at < $1;`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	if err := row.Scan(
		&j.ID, &j.Provider, &j.ProviderJobID, &j.Title, &j.Company, &j.Location,
		&j.IsRemote, &j.Description, &j.URL, &j.Status, &j.DiscoveredAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &j, nil
}
