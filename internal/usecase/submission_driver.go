package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
	"job-autopilot/internal/infra/metrics"
)

// submitState tracks the per-job submission state machine. Terminal on the
// first success or first fatal error; a partially filled form always reaches
// stateVerify or stateFailed, never an abandoned in-between.
type submitState int

const (
	stateNav submitState = iota
	stateChallengeCheck
	stateFormFill
	stateVerify
	stateDone
	stateFailed
)

func (s submitState) String() string {
	switch s {
	case stateNav:
		return "NAV"
	case stateChallengeCheck:
		return "CHALLENGE_CHECK"
	case stateFormFill:
		return "FORM_FILL"
	case stateVerify:
		return "VERIFY"
	case stateDone:
		return "DONE"
	default:
		return "FAILED"
	}
}

// Challenge signals looked for on every page before form interaction.
// Interstitial titles come first, widget markers match against page content.
var (
	challengeTitles = []string{
		"just a moment",
		"attention required",
		"verify you are human",
		"access denied",
		"security check",
	}
	challengeMarkers = []string{
		"cf-challenge",
		"cf-turnstile",
		"g-recaptcha",
		"h-captcha",
		"hcaptcha",
		"px-captcha",
		"datadome",
	}
)

// takeoverGrace is how much page activity after our last automated action is
// attributed to a human driving the page.
const takeoverGrace = 2 * time.Second

// SubmissionResult is what one driver run hands back to the queue processor.
type SubmissionResult struct {
	State          string
	Outcome        *adapter.FillOutcome
	ScreenshotPath string
	NeedsReview    bool
	Reason         string
}

// Submitter lets the processor be tested without a browser.
type Submitter interface {
	Submit(ctx context.Context, job *model.Job, profile *model.UserProfile, match model.ResumeMatch, dryRun bool) (*SubmissionResult, error)
}

var _ Submitter = (*SubmissionDriver)(nil)

// SubmissionDriver walks one browser session through one provider form for one
// job. It owns the session lifecycle: the browsing context and the idle
// watchdog are released on every exit path.
type SubmissionDriver struct {
	browser       adapter.Browser
	fillers       map[model.Provider]adapter.FormFiller
	docgen        adapter.DocumentGenerator
	artifacts     adapter.ArtifactStore
	idleThreshold time.Duration
	log           *zerolog.Logger

	mu           sync.Mutex
	lastActionAt time.Time
}

func NewSubmissionDriver(
	browser adapter.Browser,
	fillers map[model.Provider]adapter.FormFiller,
	docgen adapter.DocumentGenerator,
	artifacts adapter.ArtifactStore,
	idleThreshold time.Duration,
	logger *zerolog.Logger,
) *SubmissionDriver {
	if idleThreshold <= 0 {
		idleThreshold = 30 * time.Second
	}
	l := logger.With().Str("component", "SubmissionDriver").Logger()
	return &SubmissionDriver{
		browser:       browser,
		fillers:       fillers,
		docgen:        docgen,
		artifacts:     artifacts,
		idleThreshold: idleThreshold,
		log:           &l,
	}
}

// Submit drives the NAV → CHALLENGE_CHECK → FORM_FILL → VERIFY machine.
// Anomalies (challenge page, human takeover) come back as domain sentinel
// errors so the processor can pause; the screenshot is captured on both the
// success and failure paths as evidence of final form state.
func (d *SubmissionDriver) Submit(ctx context.Context, job *model.Job, profile *model.UserProfile, match model.ResumeMatch, dryRun bool) (*SubmissionResult, error) {
	filler, ok := d.fillers[job.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnsupported, job.Provider)
	}

	start := time.Now()
	session, err := d.browser.NewSession(ctx)
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("open session: %w", err))
	}
	defer session.Close()

	// The watchdog force-closes a stalled session independently of the main
	// control flow. It is a scoped resource: stopped on every exit path.
	sessCtx, cancelSess := context.WithCancel(ctx)
	defer cancelSess()
	watchdog := newIdleWatchdog(d.idleThreshold, func() {
		d.log.Warn().Str("job_id", job.ID).Msg("session idle past threshold; tearing down")
		metrics.IncAnomaly("stalled")
		_ = session.Close()
		cancelSess()
	})
	defer watchdog.Stop()

	result := &SubmissionResult{}
	var runErr error

	state := stateNav
	for state != stateDone && state != stateFailed {
		d.log.Debug().Str("job_id", job.ID).Str("state", state.String()).Msg("submission state")
		switch state {
		case stateNav:
			if err := session.Navigate(sessCtx, job.URL); err != nil {
				runErr = domain.Transient(fmt.Errorf("navigate %s: %w", job.URL, err))
				state = stateFailed
				continue
			}
			d.markAction(watchdog)
			state = stateChallengeCheck

		case stateChallengeCheck:
			if err := d.checkChallenge(sessCtx, session); err != nil {
				metrics.IncAnomaly("captcha")
				runErr = err
				state = stateFailed
				continue
			}
			state = stateFormFill

		case stateFormFill:
			outcome, err := d.fill(sessCtx, session, watchdog, filler, job, profile, match, dryRun)
			result.Outcome = outcome
			if err != nil {
				runErr = err
				state = stateFailed
				continue
			}
			if takeover := d.checkTakeover(session); takeover != nil {
				metrics.IncAnomaly("takeover")
				runErr = takeover
				state = stateFailed
				continue
			}
			if outcome.NeedsReview {
				result.NeedsReview = true
				result.Reason = outcome.ReviewReason
			}
			state = stateVerify

		case stateVerify:
			d.capture(ctx, session, job.ID, result)
			state = stateDone
		}
	}

	if state == stateFailed {
		// Evidence of where the form ended up, best-effort.
		d.capture(ctx, session, job.ID, result)
	}
	result.State = state.String()
	metrics.ObserveSubmission(string(job.Provider), time.Since(start).Seconds(), runErr == nil)
	return result, runErr
}

func (d *SubmissionDriver) fill(
	ctx context.Context,
	session adapter.BrowserSession,
	watchdog *idleWatchdog,
	filler adapter.FormFiller,
	job *model.Job,
	profile *model.UserProfile,
	match model.ResumeMatch,
	dryRun bool,
) (*adapter.FillOutcome, error) {
	resumePath := ""
	if resume := findResume(profile, match.ProfileID); resume != nil {
		p, err := d.docgen.Generate(ctx, profile, resume, job)
		if err != nil {
			return &adapter.FillOutcome{}, domain.Transient(fmt.Errorf("generate resume artifact: %w", err))
		}
		resumePath = p
	}

	outcome, err := filler.Fill(ctx, session, job, profile, resumePath, dryRun)
	if outcome == nil {
		outcome = &adapter.FillOutcome{}
	}
	d.markAction(watchdog)
	metrics.AddUnfilledFields(string(job.Provider), len(outcome.Missing))
	if err != nil {
		return outcome, err
	}
	for _, missing := range outcome.Missing {
		d.log.Info().Str("job_id", job.ID).Str("field", missing).Msg("field left unfilled; no selector matched")
	}
	return outcome, nil
}

// checkChallenge scans the page title and content for known bot-challenge
// signals. A hit is a pause-worthy anomaly, never retried here.
func (d *SubmissionDriver) checkChallenge(ctx context.Context, session adapter.BrowserSession) error {
	title, err := session.Title(ctx)
	if err != nil {
		return domain.Transient(fmt.Errorf("read page title: %w", err))
	}
	lower := strings.ToLower(title)
	for _, t := range challengeTitles {
		if strings.Contains(lower, t) {
			return fmt.Errorf("%w: interstitial title %q", domain.ErrCaptchaDetected, title)
		}
	}

	content, err := session.Content(ctx)
	if err != nil {
		return domain.Transient(fmt.Errorf("read page content: %w", err))
	}
	lower = strings.ToLower(content)
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			return fmt.Errorf("%w: challenge marker %q", domain.ErrCaptchaDetected, m)
		}
	}
	return nil
}

// checkTakeover compares the session's last page event against our own last
// automated action. Page activity well after we stopped acting means a human
// is driving; unattended automation must not continue over them.
func (d *SubmissionDriver) checkTakeover(session adapter.BrowserSession) error {
	d.mu.Lock()
	last := d.lastActionAt
	d.mu.Unlock()
	if last.IsZero() {
		return nil
	}
	if session.LastEventAt().After(last.Add(takeoverGrace)) {
		return fmt.Errorf("%w: page changed %s after last automated action",
			domain.ErrUserTakeover, session.LastEventAt().Sub(last))
	}
	return nil
}

func (d *SubmissionDriver) capture(ctx context.Context, session adapter.BrowserSession, jobID string, result *SubmissionResult) {
	png, err := session.Screenshot(ctx)
	if err != nil {
		d.log.Warn().Err(err).Str("job_id", jobID).Msg("screenshot capture failed")
		return
	}
	path, err := d.artifacts.SaveScreenshot(ctx, jobID, png)
	if err != nil {
		d.log.Warn().Err(err).Str("job_id", jobID).Msg("screenshot save failed")
		return
	}
	result.ScreenshotPath = path
}

func (d *SubmissionDriver) markAction(watchdog *idleWatchdog) {
	d.mu.Lock()
	d.lastActionAt = time.Now()
	d.mu.Unlock()
	watchdog.Reset()
}

func findResume(profile *model.UserProfile, profileID string) *model.ResumeProfile {
	for i := range profile.Resumes {
		if profile.Resumes[i].ID == profileID {
			return &profile.Resumes[i]
		}
	}
	return nil
}

// IsStalled reports whether err came from the watchdog tearing a session down.
func IsStalled(err error) bool {
	return errors.Is(err, domain.ErrSessionStalled) || errors.Is(err, context.Canceled)
}

// idleWatchdog tears down a session that shows no activity for the threshold.
// Reset on every navigation and successful fill; Stop on every exit path so no
// timer leaks past the session.
type idleWatchdog struct {
	mu    sync.Mutex
	timer *time.Timer
	d     time.Duration
}

func newIdleWatchdog(d time.Duration, onIdle func()) *idleWatchdog {
	w := &idleWatchdog{d: d}
	w.timer = time.AfterFunc(d, onIdle)
	return w
}

func (w *idleWatchdog) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(w.d)
	}
}

func (w *idleWatchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
