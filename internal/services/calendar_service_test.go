package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/ingestion/spreadsheet"
	"github.com/vintry/contentops-backend/internal/modules/analysis"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/objectstore"
)

const uploadCSV = `Blog Title,SEO Keywords,Pillar,Published URL
Tasting Notes 101,"wine tasting, notes",Wine Education,https://vy.example/tasting-notes
Harvest Week,"harvest, grapes",Harvest,
`

type calendarFixture struct {
	calendars *memCalendarRepo
	entries   *memEntryRepo
	snapshots *memSnapshotRepo
	bucket    *fakeBucket
	jobs      *fakeJobService
	cache     *fakeReportCache
	svc       CalendarService
}

func newCalendarFixture(t *testing.T) *calendarFixture {
	t.Helper()
	f := &calendarFixture{
		calendars: newMemCalendarRepo(),
		entries:   newMemEntryRepo(),
		snapshots: newMemSnapshotRepo(),
		bucket:    newFakeBucket(),
		jobs:      &fakeJobService{},
		cache:     newFakeReportCache(),
	}
	log := testLog(t)
	f.svc = NewCalendarService(testDB(t), log, f.calendars, f.entries, f.snapshots,
		spreadsheet.NewParser(log), f.bucket, f.jobs, f.cache)
	return f
}

func TestCalendarServiceUploadParsesAndQueuesAnalysis(t *testing.T) {
	f := newCalendarFixture(t)
	userID := uuid.New()

	cal, err := f.svc.UploadCalendar(authedCtx(userID), "Fall calendar", CalendarUpload{
		OriginalName: "fall.csv",
		MimeType:     "text/csv",
		SizeBytes:    int64(len(uploadCSV)),
		Data:         []byte(uploadCSV),
	})
	if err != nil {
		t.Fatalf("UploadCalendar: %v", err)
	}
	if cal.Name != "Fall calendar" || cal.UserID != userID {
		t.Fatalf("calendar identity: name=%q user=%s", cal.Name, cal.UserID)
	}
	if cal.RowCount != 2 || cal.Status != types.CalendarStatusUploaded {
		t.Fatalf("calendar state: rows=%d status=%q", cal.RowCount, cal.Status)
	}

	var headers []string
	if err := json.Unmarshal(cal.Headers, &headers); err != nil || len(headers) != 4 {
		t.Fatalf("stored headers: %v %v", headers, err)
	}
	var mapping spreadsheet.Mapping
	if err := json.Unmarshal(cal.ColumnMapping, &mapping); err != nil {
		t.Fatalf("stored mapping: %v", err)
	}
	if mapping[spreadsheet.FieldTitle] != 0 || mapping[spreadsheet.FieldKeywords] != 1 ||
		mapping[spreadsheet.FieldCategory] != 2 || mapping[spreadsheet.FieldPublishedURL] != 3 {
		t.Fatalf("detected mapping: %v", mapping)
	}

	wantPrefix := fmt.Sprintf("calendar_upload/%s/%s/", userID, cal.ID)
	if !strings.HasPrefix(cal.StorageKey, wantPrefix) {
		t.Fatalf("storage key %q lacks prefix %q", cal.StorageKey, wantPrefix)
	}
	if !strings.HasSuffix(cal.StorageKey, "_fall.csv") {
		t.Fatalf("storage key %q lacks sanitized filename", cal.StorageKey)
	}
	wantURL := "https://cdn.test/" + string(objectstore.BucketCategoryCalendar) + "/" + cal.StorageKey
	if cal.FileURL != wantURL {
		t.Fatalf("file url: want=%q got=%q", wantURL, cal.FileURL)
	}
	if len(f.bucket.uploads) != 1 {
		t.Fatalf("bucket uploads: want=1 got=%d", len(f.bucket.uploads))
	}

	entries := f.entries.byCalendar[cal.ID]
	if len(entries) != 2 {
		t.Fatalf("entries: want=2 got=%d", len(entries))
	}
	first := entries[0]
	if first.Position != 0 || first.Title != "Tasting Notes 101" ||
		first.RawKeywords != "wine tasting, notes" || first.Category != "Wine Education" ||
		first.PublishedURL != "https://vy.example/tasting-notes" {
		t.Fatalf("first entry: %+v", first)
	}
	if entries[1].Position != 1 || entries[1].PublishedURL != "" {
		t.Fatalf("second entry: %+v", entries[1])
	}
	var fields map[string]string
	if err := json.Unmarshal(first.FieldValues, &fields); err != nil || fields["title"] != first.Title {
		t.Fatalf("field values: %v %v", fields, err)
	}

	if len(f.jobs.enqueued) != 1 {
		t.Fatalf("enqueued jobs: want=1 got=%d", len(f.jobs.enqueued))
	}
	q := f.jobs.enqueued[0]
	if q.trigger != "upload" || q.calendarID != cal.ID || q.userID != userID {
		t.Fatalf("enqueue: %+v", q)
	}
}

func TestCalendarServiceUploadWithoutTitleColumnSkipsEntries(t *testing.T) {
	f := newCalendarFixture(t)
	userID := uuid.New()

	csv := "Notes,Owner\nsome notes,alice\nmore notes,bob\n"
	cal, err := f.svc.UploadCalendar(authedCtx(userID), "", CalendarUpload{
		OriginalName: "ideas.csv",
		Data:         []byte(csv),
	})
	if err != nil {
		t.Fatalf("UploadCalendar: %v", err)
	}
	if cal.Name != "ideas" {
		t.Fatalf("name fallback: want=%q got=%q", "ideas", cal.Name)
	}
	if len(f.entries.byCalendar[cal.ID]) != 0 {
		t.Fatalf("entries should not be built without a title column, got %d", len(f.entries.byCalendar[cal.ID]))
	}
	if len(f.jobs.enqueued) != 0 {
		t.Fatalf("no analysis should be queued, got %d", len(f.jobs.enqueued))
	}
	// The raw sheet is still stored so RemapColumns can fix it later.
	if f.calendars.byID[cal.ID] == nil || len(cal.Cells) == 0 {
		t.Fatal("calendar with raw cells should still be stored")
	}
}

func TestCalendarServiceUploadCleansUpFileOnRollback(t *testing.T) {
	f := newCalendarFixture(t)
	log := testLog(t)
	failing := &failingEntryRepo{}
	f.svc = NewCalendarService(testDB(t), log, f.calendars, failing, f.snapshots,
		spreadsheet.NewParser(log), f.bucket, f.jobs, f.cache)

	_, err := f.svc.UploadCalendar(authedCtx(uuid.New()), "Fall", CalendarUpload{
		OriginalName: "fall.csv",
		Data:         []byte(uploadCSV),
	})
	if err == nil {
		t.Fatal("expected entry create failure to fail the upload")
	}
	if len(f.bucket.deleted) != 1 {
		t.Fatalf("uploaded file should be deleted after rollback, deleted=%d", len(f.bucket.deleted))
	}
}

func TestCalendarServiceRemapRebuildsEntries(t *testing.T) {
	f := newCalendarFixture(t)
	userID := uuid.New()
	calID := uuid.New()

	headers, _ := json.Marshal([]string{"Topic Idea", "Keywords"})
	cells, _ := json.Marshal([][]string{
		{"Barrel Room Tour", "barrel, oak"},
		{"Wedding Venue FAQ", "wedding, venue"},
	})
	f.calendars.byID[calID] = &types.ContentCalendar{
		ID:        calID,
		UserID:    userID,
		SheetName: "Sheet1",
		Headers:   datatypes.JSON(headers),
		Cells:     datatypes.JSON(cells),
		RowCount:  2,
		Status:    types.CalendarStatusUploaded,
	}
	f.snapshots.byCalendar[calID] = &types.AnalysisSnapshot{ID: uuid.New(), CalendarID: calID}
	f.cache.store[calID] = &analysis.Report{TotalRows: 2}

	mapping := spreadsheet.Mapping{spreadsheet.FieldTitle: 0, spreadsheet.FieldKeywords: 1}
	cal, err := f.svc.RemapColumns(authedCtx(userID), calID, mapping)
	if err != nil {
		t.Fatalf("RemapColumns: %v", err)
	}

	entries := f.entries.byCalendar[calID]
	if len(entries) != 2 {
		t.Fatalf("rebuilt entries: want=2 got=%d", len(entries))
	}
	if entries[0].Title != "Barrel Room Tour" || entries[0].RawKeywords != "barrel, oak" {
		t.Fatalf("first rebuilt entry: %+v", entries[0])
	}

	var stored spreadsheet.Mapping
	if err := json.Unmarshal(cal.ColumnMapping, &stored); err != nil || stored[spreadsheet.FieldTitle] != 0 {
		t.Fatalf("stored mapping: %v %v", stored, err)
	}
	if cal.Status != types.CalendarStatusUploaded || cal.AnalyzedAt != nil {
		t.Fatalf("calendar state after remap: status=%q analyzed_at=%v", cal.Status, cal.AnalyzedAt)
	}
	if f.snapshots.byCalendar[calID] != nil {
		t.Fatal("stale snapshot should be dropped on remap")
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != calID {
		t.Fatalf("cache invalidations: %v", f.cache.invalidated)
	}
	if len(f.jobs.enqueued) != 1 || f.jobs.enqueued[0].trigger != "remap" {
		t.Fatalf("enqueue: %+v", f.jobs.enqueued)
	}
}

func TestCalendarServiceRemapRejectsBadMapping(t *testing.T) {
	f := newCalendarFixture(t)
	userID := uuid.New()
	calID := uuid.New()

	headers, _ := json.Marshal([]string{"Topic Idea", "Keywords"})
	f.calendars.byID[calID] = &types.ContentCalendar{
		ID:      calID,
		UserID:  userID,
		Headers: datatypes.JSON(headers),
		Cells:   datatypes.JSON([]byte(`[]`)),
		Status:  types.CalendarStatusUploaded,
	}

	_, err := f.svc.RemapColumns(authedCtx(userID), calID, spreadsheet.Mapping{spreadsheet.FieldTitle: 5})
	if err == nil || !strings.Contains(err.Error(), "invalid mapping") {
		t.Fatalf("out-of-range mapping: want invalid mapping error, got %v", err)
	}
	if len(f.jobs.enqueued) != 0 {
		t.Fatal("no analysis should be queued for a rejected mapping")
	}
}

func TestCalendarServiceDeleteCleansUp(t *testing.T) {
	f := newCalendarFixture(t)
	userID := uuid.New()
	calID := uuid.New()

	f.calendars.byID[calID] = &types.ContentCalendar{ID: calID, UserID: userID, Status: types.CalendarStatusReady}
	f.entries.byCalendar[calID] = []*types.CalendarEntry{{ID: uuid.New(), CalendarID: calID, Title: "A"}}
	f.snapshots.byCalendar[calID] = &types.AnalysisSnapshot{ID: uuid.New(), CalendarID: calID}
	f.cache.store[calID] = &analysis.Report{TotalRows: 1}

	if err := f.svc.DeleteForRequestUser(authedCtx(userID), calID); err != nil {
		t.Fatalf("DeleteForRequestUser: %v", err)
	}
	if len(f.calendars.softDeleted) != 1 || f.calendars.softDeleted[0] != calID {
		t.Fatalf("soft deleted: %v", f.calendars.softDeleted)
	}
	if len(f.entries.byCalendar[calID]) != 0 {
		t.Fatal("entries should be removed with the calendar")
	}
	if f.snapshots.byCalendar[calID] != nil {
		t.Fatal("snapshot should be removed with the calendar")
	}
	wantPrefix := string(objectstore.BucketCategoryCalendar) + "/" + fmt.Sprintf("calendar_upload/%s/%s/", userID, calID)
	if len(f.bucket.prefixes) != 1 || f.bucket.prefixes[0] != wantPrefix {
		t.Fatalf("storage prefix delete: %v", f.bucket.prefixes)
	}
	if len(f.cache.invalidated) != 1 {
		t.Fatalf("cache invalidations: %v", f.cache.invalidated)
	}
}

func TestCalendarServiceOwnershipAndAuth(t *testing.T) {
	f := newCalendarFixture(t)
	ownerID := uuid.New()
	calID := uuid.New()
	f.calendars.byID[calID] = &types.ContentCalendar{ID: calID, UserID: ownerID}

	if _, err := f.svc.GetForRequestUser(authedDbc(uuid.New()), calID); err == nil || err.Error() != "calendar not found" {
		t.Fatalf("foreign calendar: want 'calendar not found' got %v", err)
	}
	if _, err := f.svc.UploadCalendar(context.Background(), "x", CalendarUpload{Data: []byte("a,b\n")}); err == nil || err.Error() != "unauthorized" {
		t.Fatalf("anonymous upload: want 'unauthorized' got %v", err)
	}
}

type failingEntryRepo struct {
	memEntryRepo
}

func (f *failingEntryRepo) Create(_ dbctx.Context, _ []*types.CalendarEntry) ([]*types.CalendarEntry, error) {
	return nil, fmt.Errorf("entry insert failed")
}
