package model

import "time"

type ActionType string

const (
	ActionIngest        ActionType = "INGEST"
	ActionFilter        ActionType = "FILTER"
	ActionMatch         ActionType = "MATCH"
	ActionSubmit        ActionType = "SUBMIT"
	ActionDryRun        ActionType = "DRY_RUN"
	ActionError         ActionType = "ERROR"
	ActionAuth          ActionType = "AUTH"
	ActionProfileUpdate ActionType = "PROFILE_UPDATE"
)

type Verdict string

const (
	VerdictAccepted       Verdict = "ACCEPTED"
	VerdictRejected       Verdict = "REJECTED"
	VerdictReviewOptional Verdict = "REVIEW_OPTIONAL"
	VerdictFailed         Verdict = "FAILED"
)

// AuditRecord is one append-only evidence entry for a pipeline stage outcome.
// Every stage transition emits exactly one record; the trail is the system's
// only durable history of what happened and why.
type AuditRecord struct {
	ID        string
	Action    ActionType
	JobID     string // optional
	Verdict   Verdict
	Details   string
	Metadata  map[string]string
	CreatedAt time.Time
}
