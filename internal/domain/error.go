package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Queue lifecycle
	ErrAlreadyRunning = errors.New("queue processor already running")
	ErrQueuePaused    = errors.New("queue is paused; resume required")
	ErrLockHeld       = errors.New("queue run lock held elsewhere")

	// Submission anomalies always pause the run and are never retried
	// without an operator resume.
	ErrCaptchaDetected = errors.New("bot challenge detected")
	ErrUserTakeover    = errors.New("human interaction detected mid-submission")

	// Permanent per-job failures. The job is skipped and the run continues.
	ErrProviderUnsupported = errors.New("provider not supported for automated submission")
	ErrUploadInputMissing  = errors.New("no resume upload input found")

	ErrSessionStalled = errors.New("browser session idle past threshold")
)

// TransientError wraps network/timeout class failures that leave the job
// pending for a future run.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsAnomaly reports whether err invalidates unattended automation.
func IsAnomaly(err error) bool {
	return errors.Is(err, ErrCaptchaDetected) || errors.Is(err, ErrUserTakeover)
}
