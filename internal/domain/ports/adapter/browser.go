package adapter

import (
	"context"
	"time"
)

// Browser opens isolated browsing sessions. One session maps to one job
// submission; sessions are never shared across jobs.
type Browser interface {
	// NewSession opens a fresh isolated browsing context.
	NewSession(ctx context.Context) (BrowserSession, error)
}

// BrowserSession drives a single page through navigation and form interaction.
// All selector-taking methods receive ordered candidate lists: the first
// visible match wins, ErrNotFound-class failures mean no candidate matched.
type BrowserSession interface {
	// Navigate opens url and waits for network-idle quiescence.
	Navigate(ctx context.Context, url string) error

	Title(ctx context.Context) (string, error)
	Content(ctx context.Context) (string, error)

	// FillFirst types value into the first visible selector candidate.
	// Returns the selector used.
	FillFirst(ctx context.Context, selectors []string, value string) (string, error)

	// UploadFirst attaches path to the first matching file input.
	UploadFirst(ctx context.Context, selectors []string, path string) (string, error)

	// ClickFirst clicks the first visible selector candidate.
	ClickFirst(ctx context.Context, selectors []string) (string, error)

	// Screenshot captures the current page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// LastEventAt reports the time of the session's last page event, used by
	// takeover detection to spot page state changing without our input.
	LastEventAt() time.Time

	// Close releases the browsing context. Safe to call more than once.
	Close() error
}
