package ats

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

// NewFillers returns the strategy table for the closed provider set.
func NewFillers(logger *zerolog.Logger) map[model.Provider]adapter.FormFiller {
	return map[model.Provider]adapter.FormFiller{
		model.ProviderGreenhouse: NewGreenhouseFiller(logger),
		model.ProviderLever:      NewLeverFiller(logger),
		model.ProviderAshby:      NewAshbyFiller(logger),
	}
}

// fieldSpec is one logical form field with its ordered selector candidates.
// Required fields left unfilled flag the outcome for review.
type fieldSpec struct {
	name      string
	selectors []string
	value     func(p *model.UserProfile) string
	required  bool
}

// formLayout is what differs between providers: where the fields live.
type formLayout struct {
	provider model.Provider
	fields   []fieldSpec
	uploads  []string
	submits  []string
}

// strategyFiller executes a formLayout against a live session. All three
// providers share this walk; only the layouts differ.
type strategyFiller struct {
	layout formLayout
	log    *zerolog.Logger
}

var _ adapter.FormFiller = (*strategyFiller)(nil)

func newStrategyFiller(layout formLayout, logger *zerolog.Logger) *strategyFiller {
	l := logger.With().Str("component", "FormFiller").Str("provider", string(layout.provider)).Logger()
	return &strategyFiller{layout: layout, log: &l}
}

func (f *strategyFiller) Provider() model.Provider { return f.layout.provider }

func (f *strategyFiller) Fill(ctx context.Context, session adapter.BrowserSession, job *model.Job, profile *model.UserProfile, resumePath string, dryRun bool) (*adapter.FillOutcome, error) {
	outcome := &adapter.FillOutcome{}

	for _, field := range f.layout.fields {
		value := field.value(profile)
		if value == "" {
			// A required field with no profile value can never be satisfied;
			// submitting such a form would be rejected or, worse, accepted
			// half-empty.
			if field.required {
				outcome.Missing = append(outcome.Missing, field.name)
				outcome.NeedsReview = true
				outcome.ReviewReason = fmt.Sprintf("required field %q has no profile value", field.name)
				f.log.Warn().Str("field", field.name).Msg("required field missing from profile")
			}
			continue
		}
		sel, err := session.FillFirst(ctx, field.selectors, value)
		if err != nil {
			outcome.Missing = append(outcome.Missing, field.name)
			if field.required {
				outcome.NeedsReview = true
				outcome.ReviewReason = fmt.Sprintf("required field %q not found on page", field.name)
			}
			f.log.Warn().Str("field", field.name).Err(err).Msg("field not filled")
			continue
		}
		outcome.Filled = append(outcome.Filled, field.name)
		f.log.Debug().Str("field", field.name).Str("selector", sel).Msg("field filled")
	}

	if resumePath != "" {
		if _, err := session.UploadFirst(ctx, f.layout.uploads, resumePath); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			// The page loaded but offers no file input we recognize. The job
			// is flagged for a human instead of failing outright.
			outcome.Missing = append(outcome.Missing, "resume")
			outcome.NeedsReview = true
			outcome.ReviewReason = domain.ErrUploadInputMissing.Error()
		} else {
			outcome.UploadedFile = true
		}
	}

	if dryRun {
		f.log.Info().Str("job_id", job.ID).Msg("dry run: submit withheld")
		return outcome, nil
	}
	if outcome.NeedsReview {
		return outcome, nil
	}

	if _, err := session.ClickFirst(ctx, f.layout.submits); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			outcome.NeedsReview = true
			outcome.ReviewReason = "submit button not found"
			return outcome, nil
		}
		return nil, err
	}
	outcome.Submitted = true
	return outcome, nil
}

func contactFields(nameSel, emailSel, phoneSel, linkedinSel, locationSel []string) []fieldSpec {
	return []fieldSpec{
		{name: "full_name", selectors: nameSel, value: func(p *model.UserProfile) string { return p.FullName }, required: true},
		{name: "email", selectors: emailSel, value: func(p *model.UserProfile) string { return p.Email }, required: true},
		{name: "phone", selectors: phoneSel, value: func(p *model.UserProfile) string { return p.Phone }},
		{name: "linkedin", selectors: linkedinSel, value: func(p *model.UserProfile) string { return p.LinkedIn }},
		{name: "location", selectors: locationSel, value: func(p *model.UserProfile) string { return p.Location }},
	}
}
