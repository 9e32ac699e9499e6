package usecase

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/infra/metrics"
)

// FilterRule is one independent gate. Rules are evaluated in declared order
// and the engine short-circuits on the first rejection.
type FilterRule interface {
	Name() string
	Evaluate(job *model.Job) model.FilterResult
}

// FilterEngine evaluates a job against the user's rule set.
type FilterEngine struct {
	log *zerolog.Logger
}

func NewFilterEngine(logger *zerolog.Logger) *FilterEngine {
	l := logger.With().Str("component", "FilterEngine").Logger()
	return &FilterEngine{log: &l}
}

// Evaluate runs all rules in order. A job is accepted only when every rule
// passes; the first rejection wins and carries the rule's reason.
func (e *FilterEngine) Evaluate(job *model.Job, rules model.FilterRules) model.FilterResult {
	for _, rule := range buildRules(rules) {
		res := rule.Evaluate(job)
		if res.Status == model.FilterRejected {
			metrics.IncFiltered(rule.Name(), string(res.Status))
			e.log.Debug().
				Str("job_id", job.ID).
				Str("rule", rule.Name()).
				Str("reason", res.Reason).
				Msg("job rejected by filter")
			return res
		}
	}
	metrics.IncFiltered("all", string(model.FilterAccepted))
	return model.FilterResult{Status: model.FilterAccepted, Reason: "all rules passed"}
}

func buildRules(rules model.FilterRules) []FilterRule {
	return []FilterRule{
		&techStackRule{excluded: rules.ExcludedKeywords},
		&remotePolicyRule{remoteOnly: rules.RemoteOnly},
		&seniorityRule{excluded: rules.ExcludedSeniority},
	}
}

// techStackRule rejects when any excluded keyword appears (case-insensitive)
// anywhere in title + description. Matching is naive substring; callers supply
// keywords specific enough for their tolerance. An empty list accepts everything.
type techStackRule struct {
	excluded []string
}

func (r *techStackRule) Name() string { return "tech_stack" }

func (r *techStackRule) Evaluate(job *model.Job) model.FilterResult {
	if len(r.excluded) == 0 {
		return accepted("no excluded keywords configured")
	}
	combined := strings.ToLower(job.Title + " " + job.Description)
	for _, kw := range r.excluded {
		if kw == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(kw)) {
			return rejected(fmt.Sprintf("excluded keyword %q found in posting", kw))
		}
	}
	return accepted("no excluded keywords present")
}

// remotePolicyRule accepts everything when remote-only is off. When on, the
// job's remote flag or a "remote" mention in the title passes; scrapers set
// the flag unreliably, so the title is the fallback signal.
type remotePolicyRule struct {
	remoteOnly bool
}

func (r *remotePolicyRule) Name() string { return "remote_policy" }

func (r *remotePolicyRule) Evaluate(job *model.Job) model.FilterResult {
	if !r.remoteOnly {
		return accepted("remote-only disabled")
	}
	if job.IsRemote {
		return accepted("job flagged remote")
	}
	if strings.Contains(strings.ToLower(job.Title), "remote") {
		return accepted("title mentions remote")
	}
	return rejected(fmt.Sprintf("remote-only is set but %q is on-site (location %q)", job.Title, job.Location))
}

// seniorityRule matches excluded tokens against the title only; descriptions
// mention senior staff too often to be a useful signal.
type seniorityRule struct {
	excluded []string
}

func (r *seniorityRule) Name() string { return "seniority" }

func (r *seniorityRule) Evaluate(job *model.Job) model.FilterResult {
	title := strings.ToLower(job.Title)
	for _, token := range r.excluded {
		if token == "" {
			continue
		}
		if strings.Contains(title, strings.ToLower(token)) {
			return rejected(fmt.Sprintf("excluded seniority %q found in title", token))
		}
	}
	return accepted("no excluded seniority in title")
}

func accepted(reason string) model.FilterResult {
	return model.FilterResult{Status: model.FilterAccepted, Reason: reason}
}

func rejected(reason string) model.FilterResult {
	return model.FilterResult{Status: model.FilterRejected, Reason: reason}
}
