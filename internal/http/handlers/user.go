package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vintry/contentops-backend/internal/http/response"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/services"
)

const maxAvatarUploadBytes = 5 << 20

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, "get_me_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/me/name
func (uh *UserHandler) ChangeName(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := uh.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		response.RespondServiceError(c, "change_name_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/me/brand
func (uh *UserHandler) ChangeBrandName(c *gin.Context) {
	var req struct {
		BrandName string `json:"brand_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := uh.userService.UpdateBrandName(c.Request.Context(), req.BrandName)
	if err != nil {
		response.RespondServiceError(c, "change_brand_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/me/avatar-color
func (uh *UserHandler) ChangeAvatarColor(c *gin.Context) {
	var req struct {
		AvatarColor string `json:"avatar_color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := uh.userService.UpdateAvatarColor(c.Request.Context(), req.AvatarColor)
	if err != nil {
		response.RespondServiceError(c, "change_avatar_color_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// POST /api/me/avatar
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fileHeader.Size > maxAvatarUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxAvatarUploadBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	if len(raw) > maxAvatarUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", nil)
		return
	}

	user, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		response.RespondServiceError(c, "avatar_upload_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// POST /api/me/avatar/regenerate
func (uh *UserHandler) RegenerateAvatar(c *gin.Context) {
	user, err := uh.userService.RegenerateAvatar(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, "avatar_regenerate_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// PUT /api/me/password
func (uh *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := uh.userService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondServiceError(c, "change_password_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
