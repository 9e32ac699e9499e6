package adapter

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// DocumentGenerator produces the upload artifact (tailored resume) for one
// job from a profile. Document parsing and LLM rewriting live behind this
// port; the pipeline only needs a file it can attach.
type DocumentGenerator interface {
	Generate(ctx context.Context, profile *model.UserProfile, resume *model.ResumeProfile, job *model.Job) (path string, err error)
}

// ArtifactStore persists verification screenshots keyed by job id.
type ArtifactStore interface {
	SaveScreenshot(ctx context.Context, jobID string, png []byte) (path string, err error)
}
