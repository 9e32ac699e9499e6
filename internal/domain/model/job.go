package model

import "time"

type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusAnalyzed JobStatus = "analyzed"
	JobStatusApplied  JobStatus = "applied"
	JobStatusRejected JobStatus = "rejected"
)

// Provider identifies the ATS platform hosting a posting. The set is closed:
// form-fill strategies exist only for these values.
type Provider string

const (
	ProviderGreenhouse Provider = "greenhouse"
	ProviderLever      Provider = "lever"
	ProviderAshby      Provider = "ashby"
)

// Job is a normalized posting discovered by ingestion. (Provider, ProviderJobID)
// is the stable dedup key; re-ingesting the same posting updates fields in place.
type Job struct {
	ID            string
	Provider      Provider
	ProviderJobID string
	Title         string
	Company       string
	Location      string
	IsRemote      bool
	Description   string
	URL           string
	Status        JobStatus
	DiscoveredAt  time.Time
	UpdatedAt     time.Time
}

// RawJob is what a source scraper hands to ingestion before it is persisted.
type RawJob struct {
	Provider      Provider
	ProviderJobID string
	Title         string
	Company       string
	Location      string
	IsRemote      bool
	Description   string
	URL           string
}
