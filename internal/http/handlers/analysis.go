package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vintry/contentops-backend/internal/http/response"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/services"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
	calendarService services.CalendarService
	jobService      services.JobService
}

func NewAnalysisHandler(
	analysisService services.AnalysisService,
	calendarService services.CalendarService,
	jobService services.JobService,
) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		calendarService: calendarService,
		jobService:      jobService,
	}
}

// GET /api/calendars/:id/report
func (h *AnalysisHandler) GetReport(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	report, err := h.analysisService.GetReportForRequestUser(c.Request.Context(), calendarID)
	if err != nil {
		response.RespondServiceError(c, "get_report_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// POST /api/calendars/:id/analyze
// Re-enqueues the analysis job. Returns the already-active run when one
// is queued or running, flagged by "enqueued": false.
func (h *AnalysisHandler) Refresh(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	dbc := dbctx.New(c.Request.Context())

	// Ownership gate; foreign calendars read as missing.
	if _, err := h.calendarService.GetForRequestUser(dbc, calendarID); err != nil {
		response.RespondServiceError(c, "get_calendar_failed", err)
		return
	}

	job, enqueued, err := h.jobService.EnqueueCalendarAnalysisIfNeeded(dbc, rd.UserID, calendarID, "manual")
	if err != nil {
		response.RespondServiceError(c, "enqueue_analysis_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"job": job, "enqueued": enqueued})
}

// GET /api/calendars/:id/entries/:entryId/similar
func (h *AnalysisHandler) GetEntrySimilarity(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
		return
	}
	result, err := h.analysisService.GetEntrySimilarityForRequestUser(dbctx.New(c.Request.Context()), calendarID, entryID)
	if err != nil {
		response.RespondServiceError(c, "get_entry_similarity_failed", err)
		return
	}
	response.RespondOK(c, result)
}
