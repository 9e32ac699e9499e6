package model

type FilterStatus string

const (
	FilterAccepted       FilterStatus = "ACCEPTED"
	FilterRejected       FilterStatus = "REJECTED"
	FilterReviewOptional FilterStatus = "REVIEW_OPTIONAL"
)

// FilterResult is the verdict of one rule-set evaluation. It is never persisted
// as an entity; it only reaches the audit trail.
type FilterResult struct {
	Status FilterStatus
	Reason string
}

// FilterRules holds the user-configured exclusion lists the engine evaluates.
// Matching is naive case-insensitive substring; callers supply keywords
// specific enough for their tolerance.
type FilterRules struct {
	ExcludedKeywords  []string
	RemoteOnly        bool
	ExcludedSeniority []string
}
