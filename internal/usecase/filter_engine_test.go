package usecase_test

import (
	"strings"
	"testing"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/usecase"
)

func TestFilterEngine_TechStackExclusion(t *testing.T) {
	engine := usecase.NewFilterEngine(newTestLogger())

	tests := []struct {
		name     string
		job      model.Job
		rules    model.FilterRules
		want     model.FilterStatus
		inReason string
	}{
		{
			name:  "empty exclusion list accepts everything",
			job:   model.Job{Title: "Java Architect", Description: "Enterprise Java"},
			rules: model.FilterRules{},
			want:  model.FilterAccepted,
		},
		{
			name:     "keyword in description rejects",
			job:      model.Job{Title: "Backend Engineer", Description: "We use PHP and jQuery"},
			rules:    model.FilterRules{ExcludedKeywords: []string{"php"}},
			want:     model.FilterRejected,
			inReason: "php",
		},
		{
			name:     "keyword match is case-insensitive",
			job:      model.Job{Title: "Senior RUBY Developer", Description: ""},
			rules:    model.FilterRules{ExcludedKeywords: []string{"ruby"}},
			want:     model.FilterRejected,
			inReason: "ruby",
		},
		{
			name:  "no keyword present accepts",
			job:   model.Job{Title: "Frontend Engineer", Description: "We use TypeScript and React"},
			rules: model.FilterRules{ExcludedKeywords: []string{"java"}},
			want:  model.FilterAccepted,
		},
		{
			name:     "substring match is intentionally naive",
			job:      model.Job{Title: "JavaScript Engineer", Description: ""},
			rules:    model.FilterRules{ExcludedKeywords: []string{"java"}},
			want:     model.FilterRejected,
			inReason: "java",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.Evaluate(&tt.job, tt.rules)
			if res.Status != tt.want {
				t.Fatalf("status = %s, want %s (reason %q)", res.Status, tt.want, res.Reason)
			}
			if tt.inReason != "" && !strings.Contains(strings.ToLower(res.Reason), tt.inReason) {
				t.Errorf("reason %q does not mention %q", res.Reason, tt.inReason)
			}
		})
	}
}

func TestFilterEngine_RemotePolicy(t *testing.T) {
	engine := usecase.NewFilterEngine(newTestLogger())

	tests := []struct {
		name       string
		remoteOnly bool
		job        model.Job
		want       model.FilterStatus
	}{
		{"disabled always accepts", false, model.Job{Title: "Onsite Engineer", IsRemote: false}, model.FilterAccepted},
		{"remote flag accepts", true, model.Job{Title: "Engineer", IsRemote: true}, model.FilterAccepted},
		{"title fallback accepts", true, model.Job{Title: "Engineer (Remote)", IsRemote: false}, model.FilterAccepted},
		{"onsite rejected", true, model.Job{Title: "Engineer", IsRemote: false, Location: "Berlin"}, model.FilterRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.Evaluate(&tt.job, model.FilterRules{RemoteOnly: tt.remoteOnly})
			if res.Status != tt.want {
				t.Fatalf("status = %s, want %s (reason %q)", res.Status, tt.want, res.Reason)
			}
		})
	}
}

func TestFilterEngine_SeniorityExclusion(t *testing.T) {
	engine := usecase.NewFilterEngine(newTestLogger())

	t.Run("staff title rejected with reason", func(t *testing.T) {
		job := model.Job{Title: "Staff Engineer", Description: "High level role"}
		res := engine.Evaluate(&job, model.FilterRules{ExcludedSeniority: []string{"staff"}})
		if res.Status != model.FilterRejected {
			t.Fatalf("status = %s, want REJECTED", res.Status)
		}
		if !strings.Contains(strings.ToLower(res.Reason), "staff") {
			t.Errorf("reason %q does not mention staff", res.Reason)
		}
	})

	t.Run("description mention does not reject", func(t *testing.T) {
		job := model.Job{Title: "Software Engineer", Description: "You report to a principal engineer"}
		res := engine.Evaluate(&job, model.FilterRules{ExcludedSeniority: []string{"principal"}})
		if res.Status != model.FilterAccepted {
			t.Fatalf("status = %s, want ACCEPTED (reason %q)", res.Status, res.Reason)
		}
	})
}

func TestFilterEngine_ShortCircuitOrder(t *testing.T) {
	engine := usecase.NewFilterEngine(newTestLogger())

	// Both tech-stack and seniority would reject; the tech-stack rule is
	// declared first, so its reason wins.
	job := model.Job{Title: "Staff PHP Engineer", Description: ""}
	rules := model.FilterRules{
		ExcludedKeywords:  []string{"php"},
		ExcludedSeniority: []string{"staff"},
	}
	res := engine.Evaluate(&job, rules)
	if res.Status != model.FilterRejected {
		t.Fatalf("status = %s, want REJECTED", res.Status)
	}
	if !strings.Contains(res.Reason, "php") {
		t.Errorf("expected the first declared rule's reason, got %q", res.Reason)
	}
}
