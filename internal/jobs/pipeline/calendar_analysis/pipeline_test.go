package calendar_analysis

// Stubs embed their interfaces so only the methods this pipeline touches
// need bodies; calling anything else panics.

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	jobrt "github.com/vintry/contentops-backend/internal/jobs/runtime"
	"github.com/vintry/contentops-backend/internal/modules/analysis"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/services"
)

type stubCalendarRepo struct {
	repos.ContentCalendarRepo
	byID    map[uuid.UUID]*types.ContentCalendar
	updates []map[string]any
}

func (s *stubCalendarRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.ContentCalendar, error) {
	return s.byID[id], nil
}

func (s *stubCalendarRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = append(s.updates, updates)
	if c, ok := s.byID[id]; ok {
		if status, ok := updates["status"].(string); ok {
			c.Status = status
		}
	}
	return nil
}

type stubJobRunRepo struct {
	repos.JobRunRepo
	updates []map[string]interface{}
}

func (s *stubJobRunRepo) UpdateFieldsUnlessStatus(_ dbctx.Context, _ uuid.UUID, _ []string, updates map[string]interface{}) (bool, error) {
	s.updates = append(s.updates, updates)
	return true, nil
}

type stubAnalysisService struct {
	services.AnalysisService
	report   *analysis.Report
	snapshot *types.AnalysisSnapshot
	err      error
	calls    int
}

func (s *stubAnalysisService) RunForCalendar(_ dbctx.Context, _ uuid.UUID) (*analysis.Report, *types.AnalysisSnapshot, error) {
	s.calls++
	return s.report, s.snapshot, s.err
}

type stubCalendarNotifier struct {
	analyzed     []uuid.UUID
	failedStages []string
}

func (s *stubCalendarNotifier) CalendarAnalyzed(_ uuid.UUID, cal *types.ContentCalendar, _ *types.AnalysisSnapshot) {
	s.analyzed = append(s.analyzed, cal.ID)
}

func (s *stubCalendarNotifier) CalendarFailed(_ uuid.UUID, _ *types.ContentCalendar, stage string, _ string) {
	s.failedStages = append(s.failedStages, stage)
}

func testPipeline(t *testing.T, calRepo *stubCalendarRepo, svc *stubAnalysisService, notify *stubCalendarNotifier) *Pipeline {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return New(nil, log, calRepo, svc, notify)
}

func claimedJob(t *testing.T, calendarID uuid.UUID) *types.JobRun {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"calendar_id": calendarID.String()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		JobType:     types.JobTypeCalendarAnalysis,
		Status:      types.JobStatusRunning,
		Payload:     datatypes.JSON(payload),
	}
}

func TestRunSuccess(t *testing.T) {
	cal := &types.ContentCalendar{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: types.CalendarStatusUploaded,
	}
	calRepo := &stubCalendarRepo{byID: map[uuid.UUID]*types.ContentCalendar{cal.ID: cal}}
	svc := &stubAnalysisService{
		report:   &analysis.Report{TotalRows: 4, PublishedCount: 2, Clusters: []analysis.Cluster{{}}},
		snapshot: &types.AnalysisSnapshot{CalendarID: cal.ID, TotalRows: 4},
	}
	notify := &stubCalendarNotifier{}
	jobRepo := &stubJobRunRepo{}

	job := claimedJob(t, cal.ID)
	jc := jobrt.NewContext(context.Background(), nil, job, jobRepo, nil)
	if err := testPipeline(t, calRepo, svc, notify).Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if job.Status != types.JobStatusSucceeded {
		t.Fatalf("job status = %q, want %q", job.Status, types.JobStatusSucceeded)
	}
	if cal.Status != types.CalendarStatusReady {
		t.Fatalf("calendar status = %q, want %q", cal.Status, types.CalendarStatusReady)
	}
	if svc.calls != 1 {
		t.Fatalf("RunForCalendar calls = %d, want 1", svc.calls)
	}
	if len(notify.analyzed) != 1 || notify.analyzed[0] != cal.ID {
		t.Fatalf("analyzed notifications = %v, want [%s]", notify.analyzed, cal.ID)
	}
	if len(notify.failedStages) != 0 {
		t.Fatalf("unexpected failure notifications: %v", notify.failedStages)
	}

	if len(calRepo.updates) != 2 {
		t.Fatalf("calendar updates = %d, want 2", len(calRepo.updates))
	}
	if calRepo.updates[0]["status"] != types.CalendarStatusAnalyzing {
		t.Fatalf("first update status = %v, want analyzing", calRepo.updates[0]["status"])
	}
	if calRepo.updates[1]["status"] != types.CalendarStatusReady {
		t.Fatalf("second update status = %v, want ready", calRepo.updates[1]["status"])
	}
	if _, ok := calRepo.updates[1]["analyzed_at"]; !ok {
		t.Fatalf("final update missing analyzed_at: %v", calRepo.updates[1])
	}
}

func TestRunMissingCalendarID(t *testing.T) {
	calRepo := &stubCalendarRepo{byID: map[uuid.UUID]*types.ContentCalendar{}}
	svc := &stubAnalysisService{}
	notify := &stubCalendarNotifier{}

	job := &types.JobRun{
		ID:      uuid.New(),
		JobType: types.JobTypeCalendarAnalysis,
		Status:  types.JobStatusRunning,
	}
	jc := jobrt.NewContext(context.Background(), nil, job, &stubJobRunRepo{}, nil)
	if err := testPipeline(t, calRepo, svc, notify).Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if job.Status != types.JobStatusFailed {
		t.Fatalf("job status = %q, want failed", job.Status)
	}
	if job.Stage != "validate" {
		t.Fatalf("job stage = %q, want validate", job.Stage)
	}
	if svc.calls != 0 {
		t.Fatalf("RunForCalendar calls = %d, want 0", svc.calls)
	}
	if len(calRepo.updates) != 0 {
		t.Fatalf("unexpected calendar updates: %v", calRepo.updates)
	}
}

func TestRunCalendarMissing(t *testing.T) {
	calRepo := &stubCalendarRepo{byID: map[uuid.UUID]*types.ContentCalendar{}}
	svc := &stubAnalysisService{}
	notify := &stubCalendarNotifier{}

	job := claimedJob(t, uuid.New())
	jc := jobrt.NewContext(context.Background(), nil, job, &stubJobRunRepo{}, nil)
	if err := testPipeline(t, calRepo, svc, notify).Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if job.Status != types.JobStatusFailed {
		t.Fatalf("job status = %q, want failed", job.Status)
	}
	if job.Stage != "load" {
		t.Fatalf("job stage = %q, want load", job.Stage)
	}
	// No calendar row to flip, so no failure event either.
	if len(notify.failedStages) != 0 {
		t.Fatalf("unexpected failure notifications: %v", notify.failedStages)
	}
}

func TestRunAnalysisFailure(t *testing.T) {
	cal := &types.ContentCalendar{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: types.CalendarStatusUploaded,
	}
	calRepo := &stubCalendarRepo{byID: map[uuid.UUID]*types.ContentCalendar{cal.ID: cal}}
	svc := &stubAnalysisService{err: errors.New("entries unreadable")}
	notify := &stubCalendarNotifier{}

	job := claimedJob(t, cal.ID)
	jc := jobrt.NewContext(context.Background(), nil, job, &stubJobRunRepo{}, nil)
	if err := testPipeline(t, calRepo, svc, notify).Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if job.Status != types.JobStatusFailed {
		t.Fatalf("job status = %q, want failed", job.Status)
	}
	if cal.Status != types.CalendarStatusFailed {
		t.Fatalf("calendar status = %q, want failed", cal.Status)
	}
	if len(notify.failedStages) != 1 || notify.failedStages[0] != "analyze" {
		t.Fatalf("failure stages = %v, want [analyze]", notify.failedStages)
	}
	if len(notify.analyzed) != 0 {
		t.Fatalf("unexpected analyzed notifications: %v", notify.analyzed)
	}
}

func TestPipelineType(t *testing.T) {
	p := testPipeline(t, &stubCalendarRepo{}, &stubAnalysisService{}, &stubCalendarNotifier{})
	if p.Type() != types.JobTypeCalendarAnalysis {
		t.Fatalf("Type() = %q, want %q", p.Type(), types.JobTypeCalendarAnalysis)
	}
}
