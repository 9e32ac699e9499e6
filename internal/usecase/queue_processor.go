package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/domain/ports/usecase"
	"job-autopilot/internal/infra/logging"
	"job-autopilot/internal/infra/metrics"
)

const queueLockKey = "autopilot:queue:run"

// RunLocker guards against two processors running against the same deployment.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter throttles submissions per provider; ATS sites are rate-sensitive.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// QueueConfig tunes the processor. FailureThreshold is the consecutive
// transient-failure streak that pauses the run; it is operator-tunable rather
// than a guessed constant.
type QueueConfig struct {
	DefaultLimit     int
	FailureThreshold int
	UserID           string
	LockTTL          time.Duration
	ProviderRateMax  int
	ProviderRateWin  time.Duration
}

var _ usecase.QueueController = (*QueueProcessor)(nil)

// QueueProcessor pulls pending jobs oldest-first and walks each through
// filter → match → submit, one browser session at a time. It is the only
// writer of job status and of its RunState.
type QueueProcessor struct {
	jobs     repository.JobRepository
	profiles repository.ProfileRepository
	audit    repository.AuditSink
	filter   *FilterEngine
	selector *ResumeSelector
	driver   Submitter
	state    *model.RunState
	locker   RunLocker
	limiter  RateLimiter
	cfg      QueueConfig
	log      *zerolog.Logger

	stopRequested atomic.Bool
}

func NewQueueProcessor(
	jobs repository.JobRepository,
	profiles repository.ProfileRepository,
	audit repository.AuditSink,
	filter *FilterEngine,
	selector *ResumeSelector,
	driver Submitter,
	state *model.RunState,
	locker RunLocker,
	limiter RateLimiter,
	cfg QueueConfig,
	logger *zerolog.Logger,
) *QueueProcessor {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	l := logger.With().Str("component", "QueueProcessor").Logger()
	return &QueueProcessor{
		jobs:     jobs,
		profiles: profiles,
		audit:    audit,
		filter:   filter,
		selector: selector,
		driver:   driver,
		state:    state,
		locker:   locker,
		limiter:  limiter,
		cfg:      cfg,
		log:      &l,
	}
}

// ProcessQueue runs up to limit pending jobs sequentially. Re-entrant calls
// are rejected, not queued; a paused queue refuses to start until Resume.
func (p *QueueProcessor) ProcessQueue(ctx context.Context, limit int, dryRun bool) (*model.Report, error) {
	if !p.state.TryStart() {
		metrics.IncQueueRun("rejected_reentrant")
		if p.state.Snapshot().IsPaused {
			return nil, domain.ErrQueuePaused
		}
		return nil, domain.ErrAlreadyRunning
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "QueueProcessor.ProcessQueue")()

	if p.locker != nil {
		token, err := p.locker.TryLock(ctx, queueLockKey, p.cfg.LockTTL)
		if err != nil {
			p.state.Finish()
			return nil, fmt.Errorf("%w: %v", domain.ErrLockHeld, err)
		}
		defer func() { _ = p.locker.Unlock(context.Background(), queueLockKey, token) }()
	}

	p.stopRequested.Store(false)
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}

	report := &model.Report{StartedAt: time.Now()}
	finish := func(result string) {
		report.Duration = time.Since(report.StartedAt)
		metrics.IncQueueRun(result)
		p.state.Finish()
	}

	profile, err := p.profiles.GetProfile(ctx, p.cfg.UserID)
	if err != nil {
		finish("completed")
		return report, fmt.Errorf("load profile: %w", err)
	}

	pending, err := p.jobs.ListPending(ctx, limit)
	if err != nil {
		finish("completed")
		return report, fmt.Errorf("list pending jobs: %w", err)
	}
	log.Info().Int("pending", len(pending)).Bool("dry_run", dryRun).Msg("queue run started")

	for _, job := range pending {
		if p.stopRequested.Load() {
			log.Info().Msg("stop requested; ending run at job boundary")
			finish("stopped")
			return report, nil
		}
		if p.state.Snapshot().IsPaused {
			report.Paused = true
			finish("paused")
			return report, nil
		}

		jctx := logging.WithJobID(logging.WithProvider(ctx, string(job.Provider)), job.ID)
		outcome, fatal := p.processJob(jctx, job, profile, dryRun, report)
		report.Outcomes = append(report.Outcomes, outcome)
		report.Processed++
		metrics.IncJobOutcome(string(outcome.Kind))
		p.state.Touch()

		if fatal != nil {
			finish("completed")
			return report, fatal
		}
		if p.state.Snapshot().IsPaused {
			report.Paused = true
			finish("paused")
			return report, nil
		}
	}

	log.Info().Int("processed", report.Processed).Int("submitted", report.Submitted).Msg("queue run complete")
	finish("completed")
	return report, nil
}

// processJob walks one job through the pipeline. A non-nil second return is a
// fatal error that must surface to the caller; the job is left un-mutated.
func (p *QueueProcessor) processJob(ctx context.Context, job *model.Job, profile *model.UserProfile, dryRun bool, report *model.Report) (model.JobOutcome, error) {
	log := logging.With(ctx, p.log)
	outcome := model.JobOutcome{JobID: job.ID, Title: job.Title, Company: job.Company}

	// ---- Filter gate ----
	res := p.filter.Evaluate(job, profile.Rules)
	if res.Status == model.FilterRejected {
		if err := p.jobs.UpdateStatus(ctx, job.ID, model.JobStatusRejected); err != nil {
			log.Error().Err(err).Msg("mark rejected failed")
		}
		p.auditJob(ctx, model.ActionFilter, job.ID, model.VerdictRejected, res.Reason, nil)
		report.Rejected++
		outcome.Kind, outcome.Reason = model.OutcomeRejected, res.Reason
		return outcome, nil
	}
	p.auditJob(ctx, model.ActionFilter, job.ID, model.VerdictAccepted, res.Reason, nil)

	// ---- Provider rate limit: leave the job pending for a later run ----
	if p.limiter != nil {
		allowed, err := p.limiter.Allow(ctx, "rate:submit:"+string(job.Provider), p.cfg.ProviderRateMax, p.cfg.ProviderRateWin)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable; continuing")
		} else if !allowed {
			report.Skipped++
			outcome.Kind = model.OutcomeSkipped
			outcome.Reason = fmt.Sprintf("provider %s rate limit reached", job.Provider)
			return outcome, nil
		}
	}

	// ---- Resume selection gate (emits its own MATCH record) ----
	match := p.selector.Select(ctx, job, profile)

	// ---- Submission ----
	result, err := p.driver.Submit(ctx, job, profile, match, dryRun)
	if err != nil {
		return p.handleSubmitError(ctx, job, err, report, outcome)
	}

	if result.NeedsReview {
		// Filled what we could but e.g. no upload input: a human confirms,
		// the job is never silently marked submitted.
		if !dryRun {
			if err := p.jobs.UpdateStatus(ctx, job.ID, model.JobStatusAnalyzed); err != nil {
				log.Error().Err(err).Msg("mark analyzed failed")
			}
		}
		p.auditJob(ctx, model.ActionSubmit, job.ID, model.VerdictReviewOptional, result.Reason, map[string]string{
			"screenshot": result.ScreenshotPath,
		})
		report.Skipped++
		outcome.Kind, outcome.Reason = model.OutcomeSkipped, result.Reason
		return outcome, nil
	}

	p.state.ResetFailures()

	action := model.ActionSubmit
	if dryRun {
		action = model.ActionDryRun
		outcome.Kind = model.OutcomeDryRun
	} else {
		// The system never self-certifies a submission as final; the audit
		// record below stays review-optional even on the happy path.
		if err := p.jobs.UpdateStatus(ctx, job.ID, model.JobStatusApplied); err != nil {
			log.Error().Err(err).Msg("mark applied failed")
		}
		outcome.Kind = model.OutcomeSubmitted
		report.Submitted++
	}
	p.auditJob(ctx, action, job.ID, model.VerdictReviewOptional, "application filled; awaiting human confirmation", map[string]string{
		"screenshot": result.ScreenshotPath,
		"state":      result.State,
	})
	log.Info().Str("state", result.State).Bool("dry_run", dryRun).Msg("submission finished")
	return outcome, nil
}

func (p *QueueProcessor) handleSubmitError(ctx context.Context, job *model.Job, err error, report *model.Report, outcome model.JobOutcome) (model.JobOutcome, error) {
	log := logging.With(ctx, p.log)

	switch {
	case domain.IsAnomaly(err):
		cause := "captcha"
		if errors.Is(err, domain.ErrUserTakeover) {
			cause = "takeover"
		}
		p.state.Pause(err.Error())
		metrics.IncQueuePause(cause)
		p.auditJob(ctx, model.ActionError, job.ID, model.VerdictFailed, err.Error(), map[string]string{"anomaly": cause})
		log.Warn().Err(err).Msg("anomaly detected; queue paused")
		report.Failed++
		outcome.Kind, outcome.Reason = model.OutcomeFailed, err.Error()
		return outcome, nil

	case errors.Is(err, domain.ErrProviderUnsupported), errors.Is(err, domain.ErrUploadInputMissing):
		if uerr := p.jobs.UpdateStatus(ctx, job.ID, model.JobStatusAnalyzed); uerr != nil {
			log.Error().Err(uerr).Msg("mark analyzed failed")
		}
		p.auditJob(ctx, model.ActionError, job.ID, model.VerdictFailed, err.Error(), nil)
		report.Skipped++
		outcome.Kind, outcome.Reason = model.OutcomeSkipped, err.Error()
		return outcome, nil

	case domain.IsTransient(err):
		// Job stays pending for a future run.
		p.auditJob(ctx, model.ActionError, job.ID, model.VerdictFailed, err.Error(), nil)
		streak := p.state.RecordFailure()
		log.Warn().Err(err).Int("streak", streak).Msg("transient submission failure")
		if streak >= p.cfg.FailureThreshold {
			reason := fmt.Sprintf("%d consecutive transient failures", streak)
			p.state.Pause(reason)
			metrics.IncQueuePause("failure_streak")
			log.Warn().Str("reason", reason).Msg("failure streak threshold reached; queue paused")
		}
		report.Failed++
		outcome.Kind, outcome.Reason = model.OutcomeFailed, err.Error()
		return outcome, nil

	default:
		// Fatal: surface to the caller; the job keeps its current status.
		p.auditJob(ctx, model.ActionError, job.ID, model.VerdictFailed, err.Error(), nil)
		report.Failed++
		outcome.Kind, outcome.Reason = model.OutcomeFailed, err.Error()
		return outcome, fmt.Errorf("submission for job %s: %w", job.ID, err)
	}
}

func (p *QueueProcessor) auditJob(ctx context.Context, action model.ActionType, jobID string, verdict model.Verdict, details string, meta map[string]string) {
	p.audit.Log(ctx, &model.AuditRecord{
		ID:        ulid.Make().String(),
		Action:    action,
		JobID:     jobID,
		Verdict:   verdict,
		Details:   details,
		Metadata:  meta,
		CreatedAt: time.Now(),
	})
}

func (p *QueueProcessor) Status() model.RunStatus { return p.state.Snapshot() }

// Pause halts processing at the next safe boundary with an operator reason.
func (p *QueueProcessor) Pause(reason string) {
	if reason == "" {
		reason = "paused by operator"
	}
	p.state.Pause(reason)
	metrics.IncQueuePause("operator")
	p.log.Info().Str("reason", reason).Msg("queue paused")
}

// Resume clears the pause. The failure streak is not reset.
func (p *QueueProcessor) Resume() {
	p.state.Resume()
	p.log.Info().Msg("queue resumed")
}

// Stop is cooperative: it takes effect between jobs, never mid-submission.
func (p *QueueProcessor) Stop() {
	p.stopRequested.Store(true)
	p.log.Info().Msg("stop requested")
}
