package model

import "time"

// UserProfile aggregates everything the pipeline needs to apply on a user's
// behalf: contact info, filter preferences, skills and resume profiles.
type UserProfile struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Location  string
	LinkedIn  string
	Skills    []string
	Rules     FilterRules
	Resumes   []ResumeProfile
	UpdatedAt time.Time
}

// ResumeProfile is one tailored resume variant. TargetRoles are the phrases
// matched against job titles during selection.
type ResumeProfile struct {
	ID          string
	Name        string
	TargetRoles []string
	FilePath    string
}

// KeywordCategory narrows the scoring dictionary before resume selection.
// Categories are evaluated in declared order; the first highest hit count wins.
type KeywordCategory struct {
	Name     string
	Keywords []string
}

// DefaultProfileID is returned by selection when a user has no resume profiles.
const DefaultProfileID = "default"

// ResumeMatch is the outcome of resume selection for one job. Score is
// non-negative and only meaningful relative to other profiles in the same run.
type ResumeMatch struct {
	ProfileID string
	Score     int
	Reason    string
}
