package audit

import (
	"context"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

var _ repository.AuditSink = (*LogSink)(nil)

// LogSink mirrors the trail into the structured log stream. Useful on its own
// in dev and as the always-available second backend in production.
type LogSink struct {
	log *zerolog.Logger
}

func NewLogSink(logger *zerolog.Logger) *LogSink {
	l := logger.With().Str("component", "Audit").Logger()
	return &LogSink{log: &l}
}

func (s *LogSink) Log(ctx context.Context, rec *model.AuditRecord) {
	ev := s.log.Info().
		Str("record_id", rec.ID).
		Str("action", string(rec.Action)).
		Str("verdict", string(rec.Verdict)).
		Str("details", rec.Details)
	if rec.JobID != "" {
		ev = ev.Str("job_id", rec.JobID)
	}
	for k, v := range rec.Metadata {
		ev = ev.Str("meta_"+k, v)
	}
	ev.Msg("audit")
}
