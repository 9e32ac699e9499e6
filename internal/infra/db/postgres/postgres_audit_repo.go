package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

var (
	_ repository.AuditSink   = (*AuditRepo)(nil)
	_ repository.AuditReader = (*AuditRepo)(nil)
)

// AuditRepo persists the append-only trail. Log is best-effort: a database
// hiccup is logged and swallowed so evidence writing never blocks the pipeline.
type AuditRepo struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewAuditRepo(pool *pgxpool.Pool, logger *zerolog.Logger) *AuditRepo {
	l := logger.With().Str("component", "AuditRepo").Logger()
	return &AuditRepo{pool: pool, log: &l}
}

func (r *AuditRepo) Log(ctx context.Context, rec *model.AuditRecord) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		r.log.Error().Err(err).Str("record_id", rec.ID).Msg("encode audit metadata failed")
		meta = []byte("{}")
	}
	_, err = execSQL(ctx, r.pool, nil, `
INSERT INTO audit_records (id, action, job_id, verdict, details, metadata, created_at)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7);`,
		rec.ID, rec.Action, rec.JobID, rec.Verdict, rec.Details, meta, rec.CreatedAt)
	if err != nil {
		r.log.Error().Err(err).Str("record_id", rec.ID).Str("action", string(rec.Action)).Msg("audit write failed")
	}
}

const auditColumns = `id, action, COALESCE(job_id, ''), verdict, details, metadata, created_at`

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := pickRows(ctx, r.pool, nil,
		`SELECT `+auditColumns+` FROM audit_records ORDER BY created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRecords(rows)
}

func (r *AuditRepo) ListByJob(ctx context.Context, jobID string) ([]*model.AuditRecord, error) {
	rows, err := pickRows(ctx, r.pool, nil,
		`SELECT `+auditColumns+` FROM audit_records WHERE job_id=$1 ORDER BY created_at ASC;`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRecords(rows)
}

func scanAuditRecords(rows pgx.Rows) ([]*model.AuditRecord, error) {
	var out []*model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.JobID, &rec.Verdict, &rec.Details, &meta, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
