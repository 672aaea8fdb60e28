package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vintry/contentops-backend/internal/http/response"
	"github.com/vintry/contentops-backend/internal/ingestion/spreadsheet"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/services"
)

const maxCalendarUploadBytes = 32 << 20

type CalendarHandler struct {
	log             *logger.Logger
	calendarService services.CalendarService
}

func NewCalendarHandler(log *logger.Logger, calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		log:             log.With("handler", "CalendarHandler"),
		calendarService: calendarService,
	}
}

// POST /api/calendars
// Multipart form: "file" is the spreadsheet, "name" optionally overrides
// the calendar name derived from the filename.
func (h *CalendarHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxCalendarUploadBytes); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	form := c.Request.MultipartForm
	name := ""
	if form != nil {
		if v := form.Value["name"]; len(v) > 0 {
			name = strings.TrimSpace(v[0])
		}
	}

	var fh *multipart.FileHeader
	if form != nil {
		if files := form.File["file"]; len(files) > 0 {
			fh = files[0]
		}
	}
	if fh == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", nil)
		return
	}
	if fh.Size > maxCalendarUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", nil)
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxCalendarUploadBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	if len(data) > maxCalendarUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", nil)
		return
	}
	if mimeType == "" {
		n := len(data)
		if n > 512 {
			n = 512
		}
		mimeType = http.DetectContentType(data[:n])
	}

	calendar, err := h.calendarService.UploadCalendar(c.Request.Context(), name, services.CalendarUpload{
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		SizeBytes:    fh.Size,
		Data:         data,
	})
	if err != nil {
		response.RespondServiceError(c, "calendar_upload_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"calendar": calendar})
}

// GET /api/calendars
func (h *CalendarHandler) List(c *gin.Context) {
	calendars, err := h.calendarService.ListForRequestUser(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, "list_calendars_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"calendars": calendars})
}

// GET /api/calendars/:id
func (h *CalendarHandler) Get(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	calendar, err := h.calendarService.GetForRequestUser(dbctx.New(c.Request.Context()), calendarID)
	if err != nil {
		response.RespondServiceError(c, "get_calendar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"calendar": calendar})
}

// GET /api/calendars/:id/entries
func (h *CalendarHandler) Entries(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	entries, err := h.calendarService.GetEntriesForRequestUser(dbctx.New(c.Request.Context()), calendarID)
	if err != nil {
		response.RespondServiceError(c, "get_calendar_entries_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// GET /api/calendars/:id/mapping
func (h *CalendarHandler) GetMapping(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	calendar, err := h.calendarService.GetForRequestUser(dbctx.New(c.Request.Context()), calendarID)
	if err != nil {
		response.RespondServiceError(c, "get_calendar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"headers": calendar.Headers,
		"mapping": calendar.ColumnMapping,
	})
}

// PUT /api/calendars/:id/mapping
func (h *CalendarHandler) UpdateMapping(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	var req struct {
		Mapping spreadsheet.Mapping `json:"mapping"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	calendar, err := h.calendarService.RemapColumns(c.Request.Context(), calendarID, req.Mapping)
	if err != nil {
		response.RespondServiceError(c, "remap_calendar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"calendar": calendar})
}

// DELETE /api/calendars/:id
func (h *CalendarHandler) Delete(c *gin.Context) {
	calendarID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", err)
		return
	}
	if err := h.calendarService.DeleteForRequestUser(c.Request.Context(), calendarID); err != nil {
		response.RespondServiceError(c, "delete_calendar_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
