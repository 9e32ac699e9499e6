package usecase

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// QueueController is the surface the control API and scheduler see.
type QueueController interface {
	// ProcessQueue runs up to limit pending jobs sequentially. Re-entrant
	// calls are rejected while a run is active.
	ProcessQueue(ctx context.Context, limit int, dryRun bool) (*model.Report, error)

	Status() model.RunStatus

	// Pause halts processing at the next safe boundary.
	Pause(reason string)

	// Resume moves PAUSED -> IDLE. The failure streak is left untouched.
	Resume()

	// Stop requests a cooperative stop at the next job boundary.
	Stop()
}
