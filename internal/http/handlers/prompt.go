package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vintry/contentops-backend/internal/http/response"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/services"
)

type PromptHandler struct {
	promptService services.PromptService
}

func NewPromptHandler(promptService services.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// POST /api/prompts/render
func (h *PromptHandler) Render(c *gin.Context) {
	var req struct {
		TemplateID string            `json:"template_id"`
		EntryID    string            `json:"entry_id"`
		Overrides  map[string]string `json:"overrides"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return
	}
	input := services.RenderPromptInput{
		TemplateID: templateID,
		Overrides:  req.Overrides,
	}
	if req.EntryID != "" {
		entryID, err := uuid.Parse(req.EntryID)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_entry_id", err)
			return
		}
		input.EntryID = &entryID
	}
	rendered, err := h.promptService.RenderForRequestUser(dbctx.New(c.Request.Context()), input)
	if err != nil {
		response.RespondServiceError(c, "render_prompt_failed", err)
		return
	}
	response.RespondOK(c, rendered)
}

// POST /api/prompts
func (h *PromptHandler) Save(c *gin.Context) {
	var req struct {
		Title      string  `json:"title"`
		Body       string  `json:"body"`
		FolderID   *string `json:"folder_id"`
		TemplateID *string `json:"template_id"`
		CalendarID *string `json:"calendar_id"`
		RowIndex   *int    `json:"row_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input := services.SavePromptInput{
		Title:    req.Title,
		Body:     req.Body,
		RowIndex: req.RowIndex,
	}
	var parseErr error
	input.FolderID, parseErr = parseOptionalUUID(req.FolderID)
	if parseErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_folder_id", parseErr)
		return
	}
	input.TemplateID, parseErr = parseOptionalUUID(req.TemplateID)
	if parseErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", parseErr)
		return
	}
	input.CalendarID, parseErr = parseOptionalUUID(req.CalendarID)
	if parseErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_calendar_id", parseErr)
		return
	}

	prompt, err := h.promptService.SavePrompt(c.Request.Context(), input)
	if err != nil {
		response.RespondServiceError(c, "save_prompt_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"prompt": prompt})
}

// GET /api/prompts
func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.promptService.ListForRequestUser(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, "list_prompts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"prompts": prompts})
}

// PUT /api/prompts/:id/folder
// A null folder_id moves the prompt back to the root.
func (h *PromptHandler) MoveToFolder(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_prompt_id", err)
		return
	}
	var req struct {
		FolderID *string `json:"folder_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	folderID, parseErr := parseOptionalUUID(req.FolderID)
	if parseErr != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_folder_id", parseErr)
		return
	}
	prompt, err := h.promptService.MoveToFolder(c.Request.Context(), promptID, folderID)
	if err != nil {
		response.RespondServiceError(c, "move_prompt_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"prompt": prompt})
}

// DELETE /api/prompts/:id
func (h *PromptHandler) Delete(c *gin.Context) {
	promptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_prompt_id", err)
		return
	}
	if err := h.promptService.DeleteForRequestUser(c.Request.Context(), promptID); err != nil {
		response.RespondServiceError(c, "delete_prompt_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/prompt-folders
func (h *PromptHandler) CreateFolder(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	folder, err := h.promptService.CreateFolder(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondServiceError(c, "create_folder_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"folder": folder})
}

// GET /api/prompt-folders
func (h *PromptHandler) ListFolders(c *gin.Context) {
	folders, err := h.promptService.ListFoldersForRequestUser(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, "list_folders_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"folders": folders})
}

// PUT /api/prompt-folders/:id
func (h *PromptHandler) RenameFolder(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_folder_id", err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	folder, err := h.promptService.RenameFolder(c.Request.Context(), folderID, req.Name)
	if err != nil {
		response.RespondServiceError(c, "rename_folder_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"folder": folder})
}

// DELETE /api/prompt-folders/:id
// Prompts inside the folder survive and move to the root.
func (h *PromptHandler) DeleteFolder(c *gin.Context) {
	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_folder_id", err)
		return
	}
	if err := h.promptService.DeleteFolder(c.Request.Context(), folderID); err != nil {
		response.RespondServiceError(c, "delete_folder_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
