package web

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/domain/ports/usecase"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockQueue struct {
	StatusFunc  func() model.RunStatus
	ProcessFunc func(ctx context.Context, limit int, dryRun bool) (*model.Report, error)

	Paused  []string
	Resumed int
	Stopped int
	Runs    int
}

var _ usecase.QueueController = (*mockQueue)(nil)

func (m *mockQueue) ProcessQueue(ctx context.Context, limit int, dryRun bool) (*model.Report, error) {
	m.Runs++
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, limit, dryRun)
	}
	return &model.Report{}, nil
}

func (m *mockQueue) Status() model.RunStatus {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return model.RunStatus{}
}

func (m *mockQueue) Pause(reason string) { m.Paused = append(m.Paused, reason) }
func (m *mockQueue) Resume()             { m.Resumed++ }
func (m *mockQueue) Stop()               { m.Stopped++ }

type mockAuditReader struct {
	ListRecentFunc func(ctx context.Context, limit int) ([]*model.AuditRecord, error)
	ListByJobFunc  func(ctx context.Context, jobID string) ([]*model.AuditRecord, error)
}

var _ repository.AuditReader = (*mockAuditReader)(nil)

func (m *mockAuditReader) ListRecent(ctx context.Context, limit int) ([]*model.AuditRecord, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockAuditReader) ListByJob(ctx context.Context, jobID string) ([]*model.AuditRecord, error) {
	if m.ListByJobFunc != nil {
		return m.ListByJobFunc(ctx, jobID)
	}
	return nil, nil
}

type mockAuditSink struct {
	Records []*model.AuditRecord
}

var _ repository.AuditSink = (*mockAuditSink)(nil)

func (m *mockAuditSink) Log(ctx context.Context, rec *model.AuditRecord) {
	m.Records = append(m.Records, rec)
}

// ByAction returns the recorded entries for one action type, in order.
func (m *mockAuditSink) ByAction(action model.ActionType) []*model.AuditRecord {
	var out []*model.AuditRecord
	for _, rec := range m.Records {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}

type mockProfileRepo struct {
	GetProfileFunc  func(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveProfileFunc func(ctx context.Context, profile *model.UserProfile) error
	Saved           []*model.UserProfile
}

var _ repository.ProfileRepository = (*mockProfileRepo)(nil)

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &model.UserProfile{ID: userID}, nil
}

func (m *mockProfileRepo) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	m.Saved = append(m.Saved, profile)
	if m.SaveProfileFunc != nil {
		return m.SaveProfileFunc(ctx, profile)
	}
	return nil
}

type mockIngest struct {
	RunCycleFunc  func(ctx context.Context) (*model.IngestReport, error)
	UnhealthyFunc func(threshold int) []string
	Cycles        int
}

var _ IngestRunner = (*mockIngest)(nil)

func (m *mockIngest) RunCycle(ctx context.Context) (*model.IngestReport, error) {
	m.Cycles++
	if m.RunCycleFunc != nil {
		return m.RunCycleFunc(ctx)
	}
	return &model.IngestReport{StartedAt: time.Now()}, nil
}

func (m *mockIngest) UnhealthyTargets(threshold int) []string {
	if m.UnhealthyFunc != nil {
		return m.UnhealthyFunc(threshold)
	}
	return nil
}
