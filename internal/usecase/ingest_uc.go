package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/infra/metrics"
)

// IngestUseCase pulls postings from configured sources and upserts them.
// Re-ingesting a posting updates its fields through the (provider, provider
// job id) dedup key and never creates a second row.
type IngestUseCase struct {
	sources []adapter.JobSource
	jobs    repository.JobRepository
	tm      repository.TransactionManager
	audit   repository.AuditSink
	log     *zerolog.Logger

	mu       sync.Mutex
	failures map[string]int // consecutive fetch failures per source
}

func NewIngestUseCase(sources []adapter.JobSource, jobs repository.JobRepository, tm repository.TransactionManager, audit repository.AuditSink, logger *zerolog.Logger) *IngestUseCase {
	l := logger.With().Str("component", "Ingest").Logger()
	return &IngestUseCase{
		sources:  sources,
		jobs:     jobs,
		tm:       tm,
		audit:    audit,
		log:      &l,
		failures: make(map[string]int),
	}
}

// RunCycle fetches every source once. Source failures are isolated: one broken
// career page never blocks the rest of the cycle.
func (uc *IngestUseCase) RunCycle(ctx context.Context) (*model.IngestReport, error) {
	report := &model.IngestReport{StartedAt: time.Now(), Targets: len(uc.sources)}

	for _, src := range uc.sources {
		found, inserted, updated, err := uc.ingestSource(ctx, src)
		if err != nil {
			metrics.IncSourceError(src.Name())
			uc.recordFailure(src.Name())
			uc.log.Error().Err(err).Str("source", src.Name()).Msg("source fetch failed; continuing")
			continue
		}
		uc.clearFailure(src.Name())
		report.Found += found
		report.Inserted += inserted
		report.Updated += updated
	}

	report.Duration = time.Since(report.StartedAt)
	uc.log.Info().
		Int("targets", report.Targets).
		Int("found", report.Found).
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Msg("ingest cycle complete")
	return report, nil
}

func (uc *IngestUseCase) ingestSource(ctx context.Context, src adapter.JobSource) (found, inserted, updated int, err error) {
	raws, err := src.FetchJobs(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}

	// The whole batch for one source commits atomically; a save failure rolls
	// the source's cycle back and the next cycle retries from scratch.
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for i := range raws {
			raw := &raws[i]
			if raw.Provider == "" || raw.ProviderJobID == "" || raw.URL == "" {
				metrics.IncIngest(src.Name(), "invalid")
				uc.log.Warn().Str("source", src.Name()).Str("title", raw.Title).Msg("dropping raw job without dedup key")
				continue
			}
			found++
			_, wasInsert, err := uc.jobs.Save(ctx, tx, raw)
			if err != nil {
				return fmt.Errorf("save %s/%s: %w", raw.Provider, raw.ProviderJobID, err)
			}
			if wasInsert {
				inserted++
				metrics.IncIngest(src.Name(), "inserted")
			} else {
				updated++
				metrics.IncIngest(src.Name(), "updated")
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, 0, err
	}

	// One INGEST record per source per cycle keeps the trail readable.
	uc.audit.Log(ctx, &model.AuditRecord{
		ID:      ulid.Make().String(),
		Action:  model.ActionIngest,
		Verdict: model.VerdictAccepted,
		Details: fmt.Sprintf("source %s: %d found, %d inserted, %d updated", src.Name(), found, inserted, updated),
		Metadata: map[string]string{
			"source": src.Name(),
		},
		CreatedAt: time.Now(),
	})
	return found, inserted, updated, nil
}

func (uc *IngestUseCase) recordFailure(name string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.failures[name]++
}

func (uc *IngestUseCase) clearFailure(name string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.failures[name] = 0
}

// UnhealthyTargets lists sources whose consecutive fetch failures reached
// threshold. Advisory only: it feeds operator dashboards, not pause logic.
func (uc *IngestUseCase) UnhealthyTargets(threshold int) []string {
	if threshold <= 0 {
		threshold = 3
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	var out []string
	for name, n := range uc.failures {
		if n >= threshold {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
