package sched

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/usecase"
)

// IngestRunner and Sweeper keep the runner decoupled from concrete use cases.
type IngestRunner interface {
	RunCycle(ctx context.Context) (*model.IngestReport, error)
}

type Sweeper interface {
	Sweep(ctx context.Context) (marked, purged int64, err error)
}

// Runner drives the unattended loop: ingest new postings, work the queue,
// then age out old rows. A paused queue skips the processing leg until an
// operator resumes; ingestion and retention keep going regardless.
type Runner struct {
	cron    *cron.Cron
	spec    string
	dryRun  bool
	ingest  IngestRunner
	queue   usecase.QueueController
	sweeper Sweeper
	log     *zerolog.Logger
}

func NewRunner(spec string, dryRun bool, ingest IngestRunner, queue usecase.QueueController, sweeper Sweeper, logger *zerolog.Logger) *Runner {
	l := logger.With().Str("component", "Runner").Logger()
	return &Runner{
		cron:    cron.New(),
		spec:    spec,
		dryRun:  dryRun,
		ingest:  ingest,
		queue:   queue,
		sweeper: sweeper,
		log:     &l,
	}
}

// Start schedules the cycle and fires one immediately so a fresh boot does
// not sit idle for a full interval.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.runCycle(ctx) }); err != nil {
		return err
	}
	go r.runCycle(ctx)
	r.cron.Start()
	r.log.Info().Str("spec", r.spec).Bool("dry_run", r.dryRun).Msg("scheduler started")
	return nil
}

// Stop halts scheduling and waits for a running cycle to finish.
func (r *Runner) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.log.Info().Msg("scheduler stopped")
}

func (r *Runner) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if r.ingest != nil {
		if report, err := r.ingest.RunCycle(ctx); err != nil {
			r.log.Error().Err(err).Msg("scheduled ingest failed")
		} else {
			r.log.Info().Int("found", report.Found).Int("inserted", report.Inserted).Msg("scheduled ingest done")
		}
	}

	report, err := r.queue.ProcessQueue(ctx, 0, r.dryRun)
	switch {
	case errors.Is(err, domain.ErrQueuePaused):
		r.log.Warn().Str("reason", r.queue.Status().PauseReason).Msg("queue paused; skipping scheduled run")
	case errors.Is(err, domain.ErrAlreadyRunning), errors.Is(err, domain.ErrLockHeld):
		r.log.Info().Err(err).Msg("queue busy; skipping scheduled run")
	case err != nil:
		r.log.Error().Err(err).Msg("scheduled queue run failed")
	default:
		r.log.Info().
			Int("processed", report.Processed).
			Int("submitted", report.Submitted).
			Bool("paused", report.Paused).
			Msg("scheduled queue run done")
	}

	if r.sweeper != nil {
		if marked, purged, err := r.sweeper.Sweep(ctx); err != nil {
			r.log.Error().Err(err).Msg("retention sweep failed")
		} else if marked > 0 || purged > 0 {
			r.log.Info().Int64("marked", marked).Int64("purged", purged).Msg("retention sweep done")
		}
	}
}
