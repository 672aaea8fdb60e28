package services

// In-memory repo fakes shared by the service tests. Each embeds its repo
// interface so only the methods a test path touches need real bodies;
// calling anything else panics, which is the point.

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/modules/analysis"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/platform/objectstore"
	"github.com/vintry/contentops-backend/internal/realtime"
)

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func authedCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func authedDbc(userID uuid.UUID) dbctx.Context {
	return dbctx.New(authedCtx(userID))
}

// testDB opens an in-memory sqlite handle so services can run their
// Transaction wrappers. The fakes never issue SQL, so no migration runs.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// -------------------- calendar repos --------------------

type memCalendarRepo struct {
	repos.ContentCalendarRepo
	byID        map[uuid.UUID]*types.ContentCalendar
	updates     []map[string]any
	softDeleted []uuid.UUID
}

func newMemCalendarRepo() *memCalendarRepo {
	return &memCalendarRepo{byID: map[uuid.UUID]*types.ContentCalendar{}}
}

func (m *memCalendarRepo) Create(_ dbctx.Context, cals []*types.ContentCalendar) ([]*types.ContentCalendar, error) {
	for _, c := range cals {
		m.byID[c.ID] = c
	}
	return cals, nil
}

func (m *memCalendarRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.ContentCalendar, error) {
	return m.byID[id], nil
}

func (m *memCalendarRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) ([]*types.ContentCalendar, error) {
	var out []*types.ContentCalendar
	for _, c := range m.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCalendarRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	m.updates = append(m.updates, updates)
	if c, ok := m.byID[id]; ok {
		if s, ok := updates["status"].(string); ok {
			c.Status = s
		}
	}
	return nil
}

func (m *memCalendarRepo) SoftDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		m.softDeleted = append(m.softDeleted, id)
		delete(m.byID, id)
	}
	return nil
}

type memEntryRepo struct {
	repos.CalendarEntryRepo
	byCalendar map[uuid.UUID][]*types.CalendarEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{byCalendar: map[uuid.UUID][]*types.CalendarEntry{}}
}

func (m *memEntryRepo) Create(_ dbctx.Context, entries []*types.CalendarEntry) ([]*types.CalendarEntry, error) {
	for _, e := range entries {
		m.byCalendar[e.CalendarID] = append(m.byCalendar[e.CalendarID], e)
	}
	return entries, nil
}

func (m *memEntryRepo) GetByCalendarID(_ dbctx.Context, calendarID uuid.UUID) ([]*types.CalendarEntry, error) {
	return m.byCalendar[calendarID], nil
}

func (m *memEntryRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.CalendarEntry, error) {
	var out []*types.CalendarEntry
	for _, entries := range m.byCalendar {
		for _, e := range entries {
			for _, id := range ids {
				if e.ID == id {
					out = append(out, e)
				}
			}
		}
	}
	return out, nil
}

func (m *memEntryRepo) FullDeleteByCalendarIDs(_ dbctx.Context, calendarIDs []uuid.UUID) error {
	for _, id := range calendarIDs {
		delete(m.byCalendar, id)
	}
	return nil
}

type memSnapshotRepo struct {
	repos.AnalysisSnapshotRepo
	byCalendar map[uuid.UUID]*types.AnalysisSnapshot
	upserts    int
}

func newMemSnapshotRepo() *memSnapshotRepo {
	return &memSnapshotRepo{byCalendar: map[uuid.UUID]*types.AnalysisSnapshot{}}
}

func (m *memSnapshotRepo) UpsertByCalendarID(_ dbctx.Context, snapshot *types.AnalysisSnapshot) error {
	m.upserts++
	m.byCalendar[snapshot.CalendarID] = snapshot
	return nil
}

func (m *memSnapshotRepo) GetByCalendarID(_ dbctx.Context, calendarID uuid.UUID) (*types.AnalysisSnapshot, error) {
	return m.byCalendar[calendarID], nil
}

func (m *memSnapshotRepo) FullDeleteByCalendarIDs(_ dbctx.Context, calendarIDs []uuid.UUID) error {
	for _, id := range calendarIDs {
		delete(m.byCalendar, id)
	}
	return nil
}

// -------------------- prompt repos --------------------

type memTemplateRepo struct {
	repos.PromptTemplateRepo
	byID map[uuid.UUID]*types.PromptTemplate
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{byID: map[uuid.UUID]*types.PromptTemplate{}}
}

func (m *memTemplateRepo) Create(_ dbctx.Context, templates []*types.PromptTemplate) ([]*types.PromptTemplate, error) {
	for _, t := range templates {
		m.byID[t.ID] = t
	}
	return templates, nil
}

func (m *memTemplateRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.PromptTemplate, error) {
	return m.byID[id], nil
}

func (m *memTemplateRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) ([]*types.PromptTemplate, error) {
	var out []*types.PromptTemplate
	for _, t := range m.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplateRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t, ok := m.byID[id]
	if !ok {
		return nil
	}
	if v, ok := updates["name"].(string); ok {
		t.Name = v
	}
	if v, ok := updates["description"].(string); ok {
		t.Description = v
	}
	if v, ok := updates["body"].(string); ok {
		t.Body = v
	}
	return nil
}

func (m *memTemplateRepo) SoftDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(m.byID, id)
	}
	return nil
}

type memFolderRepo struct {
	repos.PromptFolderRepo
	byID map[uuid.UUID]*types.PromptFolder
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{byID: map[uuid.UUID]*types.PromptFolder{}}
}

func (m *memFolderRepo) Create(_ dbctx.Context, folders []*types.PromptFolder) ([]*types.PromptFolder, error) {
	for _, f := range folders {
		m.byID[f.ID] = f
	}
	return folders, nil
}

func (m *memFolderRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.PromptFolder, error) {
	return m.byID[id], nil
}

func (m *memFolderRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) ([]*types.PromptFolder, error) {
	var out []*types.PromptFolder
	for _, f := range m.byID {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFolderRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if f, ok := m.byID[id]; ok {
		if v, ok := updates["name"].(string); ok {
			f.Name = v
		}
	}
	return nil
}

func (m *memFolderRepo) SoftDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(m.byID, id)
	}
	return nil
}

type memPromptRepo struct {
	repos.SavedPromptRepo
	byID map[uuid.UUID]*types.SavedPrompt
}

func newMemPromptRepo() *memPromptRepo {
	return &memPromptRepo{byID: map[uuid.UUID]*types.SavedPrompt{}}
}

func (m *memPromptRepo) Create(_ dbctx.Context, prompts []*types.SavedPrompt) ([]*types.SavedPrompt, error) {
	for _, p := range prompts {
		m.byID[p.ID] = p
	}
	return prompts, nil
}

func (m *memPromptRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.SavedPrompt, error) {
	return m.byID[id], nil
}

func (m *memPromptRepo) GetByUserID(_ dbctx.Context, userID uuid.UUID) ([]*types.SavedPrompt, error) {
	var out []*types.SavedPrompt
	for _, p := range m.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPromptRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	p, ok := m.byID[id]
	if !ok {
		return nil
	}
	if v, ok := updates["folder_id"]; ok {
		if v == nil {
			p.FolderID = nil
		} else if fid, ok := v.(uuid.UUID); ok {
			p.FolderID = &fid
		}
	}
	return nil
}

func (m *memPromptRepo) ClearFolderByFolderIDs(_ dbctx.Context, folderIDs []uuid.UUID) error {
	for _, p := range m.byID {
		if p.FolderID == nil {
			continue
		}
		for _, fid := range folderIDs {
			if *p.FolderID == fid {
				p.FolderID = nil
			}
		}
	}
	return nil
}

func (m *memPromptRepo) SoftDeleteByIDs(_ dbctx.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(m.byID, id)
	}
	return nil
}

// -------------------- infra fakes --------------------

type fakeBucket struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	deleted  []string
	prefixes []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{uploads: map[string][]byte{}}
}

func (f *fakeBucket) key(category objectstore.BucketCategory, key string) string {
	return string(category) + "/" + key
}

func (f *fakeBucket) UploadFile(_ context.Context, category objectstore.BucketCategory, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[f.key(category, key)] = data
	return nil
}

func (f *fakeBucket) DeleteFile(_ context.Context, category objectstore.BucketCategory, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, f.key(category, key))
	delete(f.uploads, f.key(category, key))
	return nil
}

func (f *fakeBucket) ReplaceFile(ctx context.Context, category objectstore.BucketCategory, key string, newFile io.Reader) error {
	return f.UploadFile(ctx, category, key, newFile)
}

func (f *fakeBucket) DownloadFile(_ context.Context, category objectstore.BucketCategory, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data := f.uploads[f.key(category, key)]
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBucket) ListKeys(_ context.Context, _ objectstore.BucketCategory, _ string) ([]string, error) {
	return nil, nil
}

func (f *fakeBucket) DeletePrefix(_ context.Context, category objectstore.BucketCategory, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, f.key(category, prefix))
	return nil
}

func (f *fakeBucket) GetPublicURL(category objectstore.BucketCategory, key string) string {
	return "https://cdn.test/" + f.key(category, key)
}

type fakeReportCache struct {
	store       map[uuid.UUID]*analysis.Report
	hits        int
	invalidated []uuid.UUID
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{store: map[uuid.UUID]*analysis.Report{}}
}

func (f *fakeReportCache) GetReport(_ context.Context, calendarID uuid.UUID) (*analysis.Report, bool, error) {
	if r, ok := f.store[calendarID]; ok {
		f.hits++
		return r, true, nil
	}
	return nil, false, nil
}

func (f *fakeReportCache) SetReport(_ context.Context, calendarID uuid.UUID, report *analysis.Report) error {
	f.store[calendarID] = report
	return nil
}

func (f *fakeReportCache) InvalidateReport(_ context.Context, calendarID uuid.UUID) error {
	f.invalidated = append(f.invalidated, calendarID)
	delete(f.store, calendarID)
	return nil
}

func (f *fakeReportCache) Close() error { return nil }

type enqueuedAnalysis struct {
	userID     uuid.UUID
	calendarID uuid.UUID
	trigger    string
}

type fakeJobService struct {
	JobService
	enqueued []enqueuedAnalysis
}

func (f *fakeJobService) EnqueueCalendarAnalysisIfNeeded(_ dbctx.Context, ownerUserID, calendarID uuid.UUID, trigger string) (*types.JobRun, bool, error) {
	f.enqueued = append(f.enqueued, enqueuedAnalysis{userID: ownerUserID, calendarID: calendarID, trigger: trigger})
	return &types.JobRun{ID: uuid.New(), OwnerUserID: ownerUserID, JobType: types.JobTypeCalendarAnalysis, Status: types.JobStatusQueued}, true, nil
}

type captureEmitter struct {
	mu       sync.Mutex
	messages []realtime.SSEMessage
}

func (c *captureEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *captureEmitter) all() []realtime.SSEMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.SSEMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
