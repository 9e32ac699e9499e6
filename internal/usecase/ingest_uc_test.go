package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/usecase"
)

func rawJob(id, title string) model.RawJob {
	return model.RawJob{
		Provider:      model.ProviderGreenhouse,
		ProviderJobID: id,
		Title:         title,
		Company:       "Acme",
		URL:           "https://boards.example.com/acme/jobs/" + id,
	}
}

// dedupJobRepo inserts on first sight of a (provider, provider job id) pair
// and reports an update afterwards, like the real upsert does.
func dedupJobRepo() *MockJobRepo {
	jobs := NewMockJobRepo()
	seen := map[string]bool{}
	jobs.SaveFunc = func(ctx context.Context, tx repository.Tx, raw *model.RawJob) (string, bool, error) {
		key := string(raw.Provider) + "/" + raw.ProviderJobID
		inserted := !seen[key]
		seen[key] = true
		return "job-" + raw.ProviderJobID, inserted, nil
	}
	return jobs
}

func TestIngestUseCase_RunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("counts inserts and updates separately", func(t *testing.T) {
		jobs := dedupJobRepo()
		audit := &MockAuditSink{}
		src := &MockJobSource{
			SourceName: "acme-greenhouse",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				return []model.RawJob{rawJob("1", "Backend Engineer"), rawJob("2", "Data Engineer")}, nil
			},
		}
		uc := usecase.NewIngestUseCase([]adapter.JobSource{src}, jobs, &MockTxManager{}, audit, newTestLogger())

		first, err := uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Found != 2 || first.Inserted != 2 || first.Updated != 0 {
			t.Fatalf("first cycle found=%d inserted=%d updated=%d, want 2/2/0", first.Found, first.Inserted, first.Updated)
		}

		second, err := uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.Inserted != 0 || second.Updated != 2 {
			t.Fatalf("re-ingest inserted=%d updated=%d, want 0/2", second.Inserted, second.Updated)
		}
	})

	t.Run("raw jobs without a dedup key are dropped", func(t *testing.T) {
		jobs := dedupJobRepo()
		saves := 0
		inner := jobs.SaveFunc
		jobs.SaveFunc = func(ctx context.Context, tx repository.Tx, raw *model.RawJob) (string, bool, error) {
			saves++
			return inner(ctx, tx, raw)
		}
		audit := &MockAuditSink{}
		src := &MockJobSource{
			SourceName: "acme-greenhouse",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				missingID := rawJob("", "No ID")
				missingURL := rawJob("3", "No URL")
				missingURL.URL = ""
				return []model.RawJob{rawJob("1", "Backend Engineer"), missingID, missingURL}, nil
			},
		}
		uc := usecase.NewIngestUseCase([]adapter.JobSource{src}, jobs, &MockTxManager{}, audit, newTestLogger())

		report, err := uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Found != 1 || saves != 1 {
			t.Fatalf("found=%d saves=%d, want 1/1", report.Found, saves)
		}
	})

	t.Run("one audit record per source per cycle", func(t *testing.T) {
		jobs := dedupJobRepo()
		audit := &MockAuditSink{}
		srcA := &MockJobSource{
			SourceName: "acme-greenhouse",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				return []model.RawJob{rawJob("1", "Backend Engineer")}, nil
			},
		}
		srcB := &MockJobSource{
			SourceName: "globex-lever",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				raw := rawJob("9", "Platform Engineer")
				raw.Provider = model.ProviderLever
				return []model.RawJob{raw}, nil
			},
		}
		uc := usecase.NewIngestUseCase([]adapter.JobSource{srcA, srcB}, jobs, &MockTxManager{}, audit, newTestLogger())

		if _, err := uc.RunCycle(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		recs := audit.ByAction(model.ActionIngest)
		if len(recs) != 2 {
			t.Fatalf("INGEST records = %d, want one per source", len(recs))
		}
		for _, rec := range recs {
			if rec.Metadata["source"] == "" {
				t.Errorf("record %s missing source metadata", rec.ID)
			}
			if !strings.Contains(rec.Details, "found") {
				t.Errorf("record details %q should summarize counts", rec.Details)
			}
		}
	})

	t.Run("one broken source never blocks the others", func(t *testing.T) {
		jobs := dedupJobRepo()
		audit := &MockAuditSink{}
		broken := &MockJobSource{
			SourceName: "dead-board",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				return nil, errors.New("502 bad gateway")
			},
		}
		healthy := &MockJobSource{
			SourceName: "acme-greenhouse",
			FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
				return []model.RawJob{rawJob("1", "Backend Engineer")}, nil
			},
		}
		uc := usecase.NewIngestUseCase([]adapter.JobSource{broken, healthy}, jobs, &MockTxManager{}, audit, newTestLogger())

		report, err := uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("cycle must absorb single-source failures: %v", err)
		}
		if report.Inserted != 1 {
			t.Fatalf("inserted = %d, want 1 from the healthy source", report.Inserted)
		}
	})
}

func TestIngestUseCase_UnhealthyTargets(t *testing.T) {
	ctx := context.Background()
	jobs := dedupJobRepo()
	audit := &MockAuditSink{}

	flaky := &MockJobSource{
		SourceName: "flaky-board",
		FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
			return nil, errors.New("connection refused")
		},
	}
	healthy := &MockJobSource{
		SourceName: "acme-greenhouse",
		FetchJobsFunc: func(ctx context.Context) ([]model.RawJob, error) {
			return []model.RawJob{rawJob("1", "Backend Engineer")}, nil
		},
	}
	uc := usecase.NewIngestUseCase([]adapter.JobSource{flaky, healthy}, jobs, &MockTxManager{}, audit, newTestLogger())

	for i := 0; i < 3; i++ {
		if _, err := uc.RunCycle(ctx); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	got := uc.UnhealthyTargets(3)
	if len(got) != 1 || got[0] != "flaky-board" {
		t.Fatalf("unhealthy = %v, want [flaky-board]", got)
	}

	// A successful fetch clears the streak.
	flaky.FetchJobsFunc = func(ctx context.Context) ([]model.RawJob, error) {
		raw := rawJob("7", "SRE")
		return []model.RawJob{raw}, nil
	}
	if _, err := uc.RunCycle(ctx); err != nil {
		t.Fatalf("recovery cycle: %v", err)
	}
	if got := uc.UnhealthyTargets(3); len(got) != 0 {
		t.Fatalf("unhealthy after recovery = %v, want none", got)
	}
}

func TestRetentionUseCase_Sweep(t *testing.T) {
	jobs := NewMockJobRepo()
	jobs.MarkStaleFunc = func(ctx context.Context, cutoff time.Time) (int64, error) { return 4, nil }
	jobs.PurgeStaleFunc = func(ctx context.Context, cutoff time.Time) (int64, error) { return 2, nil }

	uc := usecase.NewRetentionUseCase(jobs, 30, 90, newTestLogger())
	marked, purged, err := uc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 4 || purged != 2 {
		t.Fatalf("marked=%d purged=%d, want 4/2", marked, purged)
	}
}

func TestRetentionUseCase_PurgeCutoffPrecedesStaleCutoff(t *testing.T) {
	var staleCutoff, purgeCutoff time.Time
	jobs := NewMockJobRepo()
	jobs.MarkStaleFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		staleCutoff = cutoff
		return 0, nil
	}
	jobs.PurgeStaleFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		purgeCutoff = cutoff
		return 0, nil
	}

	uc := usecase.NewRetentionUseCase(jobs, 30, 90, newTestLogger())
	if _, _, err := uc.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !purgeCutoff.Before(staleCutoff) {
		t.Fatalf("purge cutoff %v should be older than stale cutoff %v", purgeCutoff, staleCutoff)
	}
}
