package repository

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// AuditSink receives append-only audit records. Implementations must be
// best-effort: a failing sink logs and returns, it never blocks the pipeline.
type AuditSink interface {
	Log(ctx context.Context, rec *model.AuditRecord)
}

// AuditReader exposes the trail for operators.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*model.AuditRecord, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.AuditRecord, error)
}
