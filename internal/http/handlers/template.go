package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vintry/contentops-backend/internal/http/response"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/services"
)

type TemplateHandler struct {
	templateService services.TemplateService
}

func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// GET /api/templates
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.ListForRequestUser(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, "list_templates_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}

// GET /api/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return
	}
	template, err := h.templateService.GetForRequestUser(dbctx.New(c.Request.Context()), templateID)
	if err != nil {
		response.RespondServiceError(c, "get_template_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"template": template})
}

// POST /api/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Body        string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	template, err := h.templateService.CreateTemplate(c.Request.Context(), req.Name, req.Description, req.Body)
	if err != nil {
		response.RespondServiceError(c, "create_template_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"template": template})
}

// PUT /api/templates/:id
func (h *TemplateHandler) Update(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Body        *string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	template, err := h.templateService.UpdateTemplate(c.Request.Context(), templateID, req.Name, req.Description, req.Body)
	if err != nil {
		response.RespondServiceError(c, "update_template_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"template": template})
}

// DELETE /api/templates/:id
func (h *TemplateHandler) Delete(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return
	}
	if err := h.templateService.DeleteForRequestUser(c.Request.Context(), templateID); err != nil {
		response.RespondServiceError(c, "delete_template_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
