package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// GET /healthcheck
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
