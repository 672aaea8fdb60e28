package calendar_analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/vintry/contentops-backend/internal/domain"
	jobrt "github.com/vintry/contentops-backend/internal/jobs/runtime"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	calendarID, ok := jc.PayloadUUID("calendar_id")
	if !ok || calendarID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing calendar_id"))
		return nil
	}

	dbc := dbctx.New(jc.Ctx)

	jc.Progress("load", 10, "Loading calendar")
	cal, err := p.calendarRepo.GetByID(dbc, calendarID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if cal == nil {
		jc.Fail("load", fmt.Errorf("calendar %s not found", calendarID))
		return nil
	}

	if err := p.calendarRepo.UpdateFields(dbc, calendarID, map[string]any{
		"status": types.CalendarStatusAnalyzing,
	}); err != nil {
		jc.Fail("load", err)
		return nil
	}

	jc.Progress("analyze", 50, "Scoring rows and building the report")
	report, snapshot, err := p.analysisService.RunForCalendar(dbc, calendarID)
	if err != nil {
		p.markFailed(dbc, cal, "analyze", err)
		jc.Fail("analyze", err)
		return nil
	}

	jc.Progress("finalize", 90, "Publishing results")
	now := time.Now().UTC()
	if err := p.calendarRepo.UpdateFields(dbc, calendarID, map[string]any{
		"status":      types.CalendarStatusReady,
		"analyzed_at": now,
	}); err != nil {
		p.markFailed(dbc, cal, "finalize", err)
		jc.Fail("finalize", err)
		return nil
	}
	cal.Status = types.CalendarStatusReady
	cal.AnalyzedAt = &now

	if p.notifier != nil {
		p.notifier.CalendarAnalyzed(cal.UserID, cal, snapshot)
	}

	jc.Succeed("done", map[string]any{
		"calendar_id":     calendarID.String(),
		"total_rows":      report.TotalRows,
		"published_count": report.PublishedCount,
		"cluster_count":   len(report.Clusters),
	})
	return nil
}

// markFailed flips the calendar to failed so clients polling status see
// the terminal state even if they miss the SSE event.
func (p *Pipeline) markFailed(dbc dbctx.Context, cal *types.ContentCalendar, stage string, cause error) {
	if err := p.calendarRepo.UpdateFields(dbc, cal.ID, map[string]any{
		"status": types.CalendarStatusFailed,
	}); err != nil {
		p.log.Warn("failed to mark calendar failed", "calendar_id", cal.ID, "error", err)
	}
	cal.Status = types.CalendarStatusFailed
	if p.notifier != nil {
		p.notifier.CalendarFailed(cal.UserID, cal, stage, cause.Error())
	}
}
