package audit

import (
	"context"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

var _ repository.AuditSink = (*MultiSink)(nil)

// MultiSink fans one record out to every backend. Each sink already absorbs
// its own failures, so a broken backend never hides the record from the rest.
type MultiSink struct {
	sinks []repository.AuditSink
}

func NewMultiSink(sinks ...repository.AuditSink) *MultiSink {
	out := make([]repository.AuditSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

func (m *MultiSink) Log(ctx context.Context, rec *model.AuditRecord) {
	for _, s := range m.sinks {
		s.Log(ctx, rec)
	}
}
