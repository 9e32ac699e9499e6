package adapter

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// FillOutcome records which fields a strategy managed to fill. Missing optional
// fields are not fatal but must be visible in the audit trail.
type FillOutcome struct {
	Filled       []string
	Missing      []string
	UploadedFile bool
	Submitted    bool
	NeedsReview  bool
	ReviewReason string
}

// FormFiller is the per-provider form-fill strategy. Implementations exist for
// the closed provider set; dispatch happens on the job's provider tag.
type FormFiller interface {
	Provider() model.Provider
	// Fill walks the provider's form layout. It never dispatches the final
	// submit action when dryRun is true.
	Fill(ctx context.Context, session BrowserSession, job *model.Job, profile *model.UserProfile, resumePath string, dryRun bool) (*FillOutcome, error)
}
