package adapter

import (
	"context"

	"job-autopilot/internal/domain/model"
)

// JobSource is an employer-site scraper that yields normalized postings.
// Provider-specific scraping (greenhouse/lever/ashby HTML and JSON handling)
// lives behind this port.
type JobSource interface {
	Name() string
	FetchJobs(ctx context.Context) ([]model.RawJob, error)
}
