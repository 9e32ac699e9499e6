package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
)

const titleRoleWeight = 5

// DefaultCategories narrows the scoring dictionary before profile scoring.
// Order matters: ties between categories go to the first declared. "General"
// must stay last so it only wins when nothing else scores.
func DefaultCategories() []model.KeywordCategory {
	return []model.KeywordCategory{
		{Name: "Backend", Keywords: []string{"backend", "api", "microservice", "distributed", "database", "kubernetes", "grpc"}},
		{Name: "Frontend", Keywords: []string{"frontend", "react", "typescript", "css", "ui", "accessibility"}},
		{Name: "Data", Keywords: []string{"data", "sql", "python", "etl", "pipeline", "warehouse", "analytics"}},
		{Name: "DevOps", Keywords: []string{"devops", "terraform", "ci/cd", "infrastructure", "aws", "observability"}},
		{Name: "General", Keywords: []string{"engineer", "software", "developer"}},
	}
}

// ResumeSelector picks the resume profile that best fits a job. Selection
// always succeeds: a score of zero is a valid, if weak, match and callers
// decide whether to flag it for review.
type ResumeSelector struct {
	categories []model.KeywordCategory
	audit      repository.AuditSink
	log        *zerolog.Logger
}

func NewResumeSelector(categories []model.KeywordCategory, audit repository.AuditSink, logger *zerolog.Logger) *ResumeSelector {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	hasGeneral := false
	for _, c := range categories {
		if c.Name == "General" {
			hasGeneral = true
			break
		}
	}
	if !hasGeneral {
		categories = append(categories, model.KeywordCategory{Name: "General"})
	}
	l := logger.With().Str("component", "ResumeSelector").Logger()
	return &ResumeSelector{categories: categories, audit: audit, log: &l}
}

// Select scores every resume profile against the job and returns the winner.
// Deterministic: the same (job, profile set) always yields the same match,
// and the first profile wins ties.
func (s *ResumeSelector) Select(ctx context.Context, job *model.Job, profile *model.UserProfile) model.ResumeMatch {
	match := s.pick(job, profile)

	s.audit.Log(ctx, &model.AuditRecord{
		ID:      ulid.Make().String(),
		Action:  model.ActionMatch,
		JobID:   job.ID,
		Verdict: model.VerdictAccepted,
		Details: match.Reason,
		Metadata: map[string]string{
			"profile_id": match.ProfileID,
			"score":      strconv.Itoa(match.Score),
		},
		CreatedAt: time.Now(),
	})
	return match
}

func (s *ResumeSelector) pick(job *model.Job, profile *model.UserProfile) model.ResumeMatch {
	if len(profile.Resumes) == 0 {
		return model.ResumeMatch{
			ProfileID: model.DefaultProfileID,
			Score:     0,
			Reason:    "no resume profiles configured; using default",
		}
	}

	jobText := strings.ToLower(job.Title + " " + job.Description)
	title := strings.ToLower(job.Title)

	category := s.bestCategory(jobText)
	skillHits := countHits(jobText, profile.Skills)

	best := profile.Resumes[0]
	bestScore := s.score(title, jobText, category, skillHits, best)
	for _, r := range profile.Resumes[1:] {
		if sc := s.score(title, jobText, category, skillHits, r); sc > bestScore {
			best, bestScore = r, sc
		}
	}

	return model.ResumeMatch{
		ProfileID: best.ID,
		Score:     bestScore,
		Reason:    fmt.Sprintf("profile %q scored %d for category %q", best.Name, bestScore, category.Name),
	}
}

// bestCategory counts each category's keywords in the job text; the first
// category with the highest count wins, so "General" only wins by default.
func (s *ResumeSelector) bestCategory(jobText string) model.KeywordCategory {
	best := s.categories[0]
	bestHits := countHits(jobText, best.Keywords)
	for _, c := range s.categories[1:] {
		if hits := countHits(jobText, c.Keywords); hits > bestHits {
			best, bestHits = c, hits
		}
	}
	if bestHits == 0 {
		for _, c := range s.categories {
			if c.Name == "General" {
				return c
			}
		}
	}
	return best
}

func (s *ResumeSelector) score(title, jobText string, category model.KeywordCategory, skillHits int, r model.ResumeProfile) int {
	roleHits := 0
	for _, role := range r.TargetRoles {
		if role == "" {
			continue
		}
		if strings.Contains(title, strings.ToLower(role)) {
			roleHits++
		}
	}
	return titleRoleWeight*roleHits + countHits(jobText, category.Keywords) + skillHits
}

func countHits(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if t == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(t)) {
			n++
		}
	}
	return n
}
