package model

import "time"

type OutcomeKind string

const (
	OutcomeSubmitted OutcomeKind = "submitted"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeDryRun    OutcomeKind = "dry_run"
)

// JobOutcome records how one job left the queue during a run.
type JobOutcome struct {
	JobID   string
	Title   string
	Company string
	Kind    OutcomeKind
	Reason  string
}

// Report summarises one ProcessQueue run. It is the whole contract the
// external scheduler needs.
type Report struct {
	StartedAt time.Time
	Duration  time.Duration
	Processed int
	Submitted int
	Rejected  int
	Skipped   int
	Failed    int
	Paused    bool
	Outcomes  []JobOutcome
}

// IngestReport summarises one ingestion cycle across all sources.
type IngestReport struct {
	Targets   int
	Found     int
	Inserted  int
	Updated   int
	StartedAt time.Time
	Duration  time.Duration
}
