package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
	"job-autopilot/internal/domain/ports/repository"
	"job-autopilot/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Repositories
// =============================

// ---- Mock JobRepository ----

type MockJobRepo struct {
	mu sync.Mutex

	SaveFunc         func(ctx context.Context, tx repository.Tx, raw *model.RawJob) (string, bool, error)
	ListPendingFunc  func(ctx context.Context, limit int) ([]*model.Job, error)
	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.Job, error)
	UpdateStatusFunc func(ctx context.Context, id string, status model.JobStatus) error
	MarkStaleFunc    func(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeStaleFunc   func(ctx context.Context, cutoff time.Time) (int64, error)

	// Statuses records every UpdateStatus call keyed by job id.
	Statuses map[string]model.JobStatus
}

var _ repository.JobRepository = (*MockJobRepo)(nil)

func NewMockJobRepo() *MockJobRepo {
	return &MockJobRepo{Statuses: make(map[string]model.JobStatus)}
}

func (m *MockJobRepo) Save(ctx context.Context, tx repository.Tx, raw *model.RawJob) (string, bool, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, raw)
	}
	return "job-" + raw.ProviderJobID, true, nil
}

func (m *MockJobRepo) ListPending(ctx context.Context, limit int) ([]*model.Job, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockJobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses[id] = status
	return nil
}

func (m *MockJobRepo) StatusOf(id string) (model.JobStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Statuses[id]
	return s, ok
}

func (m *MockJobRepo) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.MarkStaleFunc != nil {
		return m.MarkStaleFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *MockJobRepo) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeStaleFunc != nil {
		return m.PurgeStaleFunc(ctx, cutoff)
	}
	return 0, nil
}

// ---- Mock ProfileRepository ----

type MockProfileRepo struct {
	GetProfileFunc  func(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveProfileFunc func(ctx context.Context, profile *model.UserProfile) error
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func (m *MockProfileRepo) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return &model.UserProfile{ID: userID}, nil
}

func (m *MockProfileRepo) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	if m.SaveProfileFunc != nil {
		return m.SaveProfileFunc(ctx, profile)
	}
	return nil
}

// ---- Mock AuditSink ----

type MockAuditSink struct {
	mu      sync.Mutex
	Records []*model.AuditRecord
}

var _ repository.AuditSink = (*MockAuditSink)(nil)

func (m *MockAuditSink) Log(ctx context.Context, rec *model.AuditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
}

func (m *MockAuditSink) ByAction(action model.ActionType) []*model.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AuditRecord
	for _, r := range m.Records {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

// =============================
// Adapters
// =============================

// ---- Mock Browser / BrowserSession ----

type MockSession struct {
	mu sync.Mutex

	NavigateFunc    func(ctx context.Context, url string) error
	TitleFunc       func(ctx context.Context) (string, error)
	ContentFunc     func(ctx context.Context) (string, error)
	FillFirstFunc   func(ctx context.Context, selectors []string, value string) (string, error)
	UploadFirstFunc func(ctx context.Context, selectors []string, path string) (string, error)
	ClickFirstFunc  func(ctx context.Context, selectors []string) (string, error)
	ScreenshotFunc  func(ctx context.Context) ([]byte, error)
	LastEvent       time.Time

	Navigated []string
	Filled    map[string]string
	Closed    int
}

var _ adapter.BrowserSession = (*MockSession)(nil)

func NewMockSession() *MockSession {
	return &MockSession{Filled: make(map[string]string)}
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	m.mu.Lock()
	m.Navigated = append(m.Navigated, url)
	m.mu.Unlock()
	if m.NavigateFunc != nil {
		return m.NavigateFunc(ctx, url)
	}
	return nil
}

func (m *MockSession) Title(ctx context.Context) (string, error) {
	if m.TitleFunc != nil {
		return m.TitleFunc(ctx)
	}
	return "Apply - Example Co", nil
}

func (m *MockSession) Content(ctx context.Context) (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc(ctx)
	}
	return "<html><form></form></html>", nil
}

func (m *MockSession) FillFirst(ctx context.Context, selectors []string, value string) (string, error) {
	if m.FillFirstFunc != nil {
		return m.FillFirstFunc(ctx, selectors, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Filled[selectors[0]] = value
	return selectors[0], nil
}

func (m *MockSession) UploadFirst(ctx context.Context, selectors []string, path string) (string, error) {
	if m.UploadFirstFunc != nil {
		return m.UploadFirstFunc(ctx, selectors, path)
	}
	return selectors[0], nil
}

func (m *MockSession) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	if m.ClickFirstFunc != nil {
		return m.ClickFirstFunc(ctx, selectors)
	}
	return selectors[0], nil
}

func (m *MockSession) Screenshot(ctx context.Context) ([]byte, error) {
	if m.ScreenshotFunc != nil {
		return m.ScreenshotFunc(ctx)
	}
	return []byte("png"), nil
}

func (m *MockSession) LastEventAt() time.Time { return m.LastEvent }

func (m *MockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

type MockBrowser struct {
	NewSessionFunc func(ctx context.Context) (adapter.BrowserSession, error)
	Session        *MockSession
}

var _ adapter.Browser = (*MockBrowser)(nil)

func (m *MockBrowser) NewSession(ctx context.Context) (adapter.BrowserSession, error) {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc(ctx)
	}
	if m.Session == nil {
		m.Session = NewMockSession()
	}
	return m.Session, nil
}

// ---- Mock FormFiller ----

type MockFormFiller struct {
	ProviderTag model.Provider
	FillFunc    func(ctx context.Context, session adapter.BrowserSession, job *model.Job, profile *model.UserProfile, resumePath string, dryRun bool) (*adapter.FillOutcome, error)
	Calls       int
}

var _ adapter.FormFiller = (*MockFormFiller)(nil)

func (m *MockFormFiller) Provider() model.Provider { return m.ProviderTag }

func (m *MockFormFiller) Fill(ctx context.Context, session adapter.BrowserSession, job *model.Job, profile *model.UserProfile, resumePath string, dryRun bool) (*adapter.FillOutcome, error) {
	m.Calls++
	if m.FillFunc != nil {
		return m.FillFunc(ctx, session, job, profile, resumePath, dryRun)
	}
	return &adapter.FillOutcome{Filled: []string{"name", "email"}, UploadedFile: resumePath != "", Submitted: !dryRun}, nil
}

// ---- Mock DocumentGenerator / ArtifactStore ----

type MockDocGen struct {
	GenerateFunc func(ctx context.Context, profile *model.UserProfile, resume *model.ResumeProfile, job *model.Job) (string, error)
}

var _ adapter.DocumentGenerator = (*MockDocGen)(nil)

func (m *MockDocGen) Generate(ctx context.Context, profile *model.UserProfile, resume *model.ResumeProfile, job *model.Job) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, profile, resume, job)
	}
	return "/tmp/resume.txt", nil
}

type MockArtifactStore struct {
	mu    sync.Mutex
	Saved map[string][]byte

	SaveScreenshotFunc func(ctx context.Context, jobID string, png []byte) (string, error)
}

var _ adapter.ArtifactStore = (*MockArtifactStore)(nil)

func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{Saved: make(map[string][]byte)}
}

func (m *MockArtifactStore) SaveScreenshot(ctx context.Context, jobID string, png []byte) (string, error) {
	if m.SaveScreenshotFunc != nil {
		return m.SaveScreenshotFunc(ctx, jobID, png)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved[jobID] = png
	return "artifacts/" + jobID + ".png", nil
}

// ---- Mock JobSource ----

type MockJobSource struct {
	SourceName    string
	FetchJobsFunc func(ctx context.Context) ([]model.RawJob, error)
}

var _ adapter.JobSource = (*MockJobSource)(nil)

func (m *MockJobSource) Name() string { return m.SourceName }

func (m *MockJobSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	if m.FetchJobsFunc != nil {
		return m.FetchJobsFunc(ctx)
	}
	return nil, nil
}

// =============================
// Queue collaborators
// =============================

// ---- Mock Submitter ----

type MockSubmitter struct {
	mu         sync.Mutex
	SubmitFunc func(ctx context.Context, job *model.Job, profile *model.UserProfile, match model.ResumeMatch, dryRun bool) (*usecase.SubmissionResult, error)
	Submitted  []string
}

var _ usecase.Submitter = (*MockSubmitter)(nil)

func (m *MockSubmitter) Submit(ctx context.Context, job *model.Job, profile *model.UserProfile, match model.ResumeMatch, dryRun bool) (*usecase.SubmissionResult, error) {
	m.mu.Lock()
	m.Submitted = append(m.Submitted, job.ID)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, job, profile, match, dryRun)
	}
	return &usecase.SubmissionResult{State: "DONE"}, nil
}

// ---- Mock RunLocker / RateLimiter ----

type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
	UnlockFunc  func(ctx context.Context, key, token string) error
	Unlocked    int
}

var _ usecase.RunLocker = (*MockLocker)(nil)

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return "token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.Unlocked++
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, key, token)
	}
	return nil
}

type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

var _ usecase.RateLimiter = (*MockRateLimiter)(nil)

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}
