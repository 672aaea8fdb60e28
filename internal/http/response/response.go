package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vintry/contentops-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondServiceError maps a service error to a status. Services signal
// ownership and existence with "not found" and auth failures with
// "unauthorized"; anything else falls back to 400 with the given code,
// unless the error carries an explicit apierr status.
func RespondServiceError(c *gin.Context, fallbackCode string, err error) {
	if ae, ok := apierr.From(err); ok {
		RespondError(c, ae.Status, ae.Code, err)
		return
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	switch {
	case msg == "unauthorized":
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case strings.HasSuffix(msg, "not found"):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case strings.Contains(msg, "not restartable"):
		RespondError(c, http.StatusConflict, "not_restartable", err)
	default:
		RespondError(c, http.StatusBadRequest, fallbackCode, err)
	}
}
