package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"infrawatch/backend/internal/detection"
	"infrawatch/backend/internal/model"
	"infrawatch/backend/internal/repository"
	"infrawatch/backend/pkg/storage"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ── Mock DamageReportRepository ──

type mockDamageReportRepo struct {
	reports   map[string]*model.DamageReport
	createErr error
	clock     time.Time
}

func newMockDamageReportRepo() *mockDamageReportRepo {
	return &mockDamageReportRepo{
		reports: make(map[string]*model.DamageReport),
		clock:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockDamageReportRepo) Create(_ context.Context, report *model.DamageReport) error {
	if m.createErr != nil {
		return m.createErr
	}
	if report.CreatedAt.IsZero() {
		m.clock = m.clock.Add(time.Minute)
		report.CreatedAt = m.clock
	}
	cp := *report
	m.reports[report.ID] = &cp
	return nil
}

func (m *mockDamageReportRepo) GetByID(_ context.Context, id string) (*model.DamageReport, error) {
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDamageReportRepo) GetByImagePath(_ context.Context, imagePath string) (*model.DamageReport, error) {
	for _, r := range m.sorted() {
		if r.ImagePath == imagePath {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDamageReportRepo) List(_ context.Context) ([]model.DamageReport, error) {
	return m.sorted(), nil
}

func (m *mockDamageReportRepo) ListByCitizen(_ context.Context, citizenID string) ([]model.DamageReport, error) {
	var result []model.DamageReport
	for _, r := range m.sorted() {
		if r.CitizenID == citizenID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockDamageReportRepo) Update(_ context.Context, report *model.DamageReport) error {
	if _, ok := m.reports[report.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *report
	m.reports[report.ID] = &cp
	return nil
}

func (m *mockDamageReportRepo) sorted() []model.DamageReport {
	result := make([]model.DamageReport, 0, len(m.reports))
	for _, r := range m.reports {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

// ── Mock WorkReportRepository ──

type mockWorkReportRepo struct {
	reports map[string]*model.WorkReport
}

func newMockWorkReportRepo() *mockWorkReportRepo {
	return &mockWorkReportRepo{reports: make(map[string]*model.WorkReport)}
}

func (m *mockWorkReportRepo) Create(_ context.Context, report *model.WorkReport) error {
	for _, r := range m.reports {
		if r.NoticeID == report.NoticeID {
			return gorm.ErrDuplicatedKey
		}
	}
	report.CreatedAt = time.Now()
	m.reports[report.ID] = report
	return nil
}

func (m *mockWorkReportRepo) GetByID(_ context.Context, id string) (*model.WorkReport, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkReportRepo) List(_ context.Context) ([]model.WorkReport, error) {
	var result []model.WorkReport
	for _, r := range m.reports {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	entries []model.AuditLog
	err     error
}

func (m *mockAuditLogRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditLogRepo) actions() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

// ── Mock 外部协作者 ──

type stubDetector struct {
	result detection.Result
	paths  []string
}

func (d *stubDetector) Detect(_ context.Context, path string) detection.Result {
	d.paths = append(d.paths, path)
	return d.result
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) Extract(_ string) (string, error) {
	return e.text, e.err
}

type publishedEvent struct {
	citizenID string
	event     interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *recordingNotifier) Publish(citizenID string, event interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{citizenID, event})
}

type failingStore struct{ storage.Store }

func (failingStore) Save(context.Context, storage.Kind, string, io.Reader) error {
	return errors.New("disk full")
}

// ── 测试夹具 ──

type fixture struct {
	repo      *repository.Repository
	users     *mockUserRepo
	damage    *mockDamageReportRepo
	work      *mockWorkReportRepo
	audit     *mockAuditLogRepo
	store     *storage.LocalStore
	detector  *stubDetector
	extractor *stubExtractor
	notifier  *recordingNotifier
	tempDir   string
	logger    *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}

	f := &fixture{
		users:     newMockUserRepo(),
		damage:    newMockDamageReportRepo(),
		work:      newMockWorkReportRepo(),
		audit:     &mockAuditLogRepo{},
		store:     store,
		detector:  &stubDetector{result: detection.Result{Label: "pothole", Confidence: 0.85}},
		extractor: &stubExtractor{},
		notifier:  &recordingNotifier{},
		tempDir:   t.TempDir(),
		logger:    zap.NewNop(),
	}
	f.repo = &repository.Repository{
		User:         f.users,
		DamageReport: f.damage,
		WorkReport:   f.work,
		AuditLog:     f.audit,
	}
	return f
}

func (f *fixture) auditService() AuditService {
	return NewAuditService(f.repo, f.logger)
}

func (f *fixture) reportService() ReportService {
	return NewReportService(f.repo, f.store, f.detector, f.auditService(), f.notifier, f.tempDir, f.logger)
}

func (f *fixture) fileService() FileService {
	return NewFileService(f.repo, f.store, f.logger)
}

func (f *fixture) workReportService() WorkReportService {
	return NewWorkReportService(f.repo, f.store, f.extractor, f.auditService(), f.tempDir, f.logger)
}

func (f *fixture) seedReport(id, citizenID, imagePath string, status model.ReportStatus) {
	_ = f.damage.Create(context.Background(), &model.DamageReport{
		ID:        id,
		CitizenID: citizenID,
		ImagePath: imagePath,
		Severity:  model.SeverityMedium,
		Status:    status,
	})
}

func (f *fixture) saveFile(t *testing.T, kind storage.Kind, name string) {
	t.Helper()
	if err := f.store.Save(context.Background(), kind, name, strings.NewReader("data")); err != nil {
		t.Fatalf("保存文件失败: %v", err)
	}
}
