package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/vintry/contentops-backend/internal/http/handlers"
	httpMW "github.com/vintry/contentops-backend/internal/http/middleware"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthMiddleware  *httpMW.AuthMiddleware
	AuthRateLimiter *httpMW.RateLimiter

	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	CalendarHandler *httpH.CalendarHandler
	AnalysisHandler *httpH.AnalysisHandler
	TemplateHandler *httpH.TemplateHandler
	PromptHandler   *httpH.PromptHandler
	JobHandler      *httpH.JobHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

// NewRouter builds the gin engine. gin.New instead of gin.Default: the
// structured RequestLogger replaces gin's own access log.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.Healthcheck)
	}

	api := r.Group("/api")
	{
		// Auth (public, rate limited)
		if cfg.AuthHandler != nil {
			public := api.Group("/")
			if cfg.AuthRateLimiter != nil {
				public.Use(cfg.AuthRateLimiter.Limit())
			}
			public.POST("/register", cfg.AuthHandler.Register)
			public.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.Stream)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PUT("/me/name", cfg.UserHandler.ChangeName)
			protected.PUT("/me/brand", cfg.UserHandler.ChangeBrandName)
			protected.PUT("/me/avatar-color", cfg.UserHandler.ChangeAvatarColor)
			protected.POST("/me/avatar", cfg.UserHandler.UploadAvatar)
			protected.POST("/me/avatar/regenerate", cfg.UserHandler.RegenerateAvatar)
			protected.PUT("/me/password", cfg.UserHandler.ChangePassword)
		}

		// Calendars
		if cfg.CalendarHandler != nil {
			protected.POST("/calendars", cfg.CalendarHandler.Upload)
			protected.GET("/calendars", cfg.CalendarHandler.List)
			protected.GET("/calendars/:id", cfg.CalendarHandler.Get)
			protected.GET("/calendars/:id/entries", cfg.CalendarHandler.Entries)
			protected.GET("/calendars/:id/mapping", cfg.CalendarHandler.GetMapping)
			protected.PUT("/calendars/:id/mapping", cfg.CalendarHandler.UpdateMapping)
			protected.DELETE("/calendars/:id", cfg.CalendarHandler.Delete)
		}

		// Analysis
		if cfg.AnalysisHandler != nil {
			protected.GET("/calendars/:id/report", cfg.AnalysisHandler.GetReport)
			protected.POST("/calendars/:id/analyze", cfg.AnalysisHandler.Refresh)
			protected.GET("/calendars/:id/entries/:entryId/similar", cfg.AnalysisHandler.GetEntrySimilarity)
		}

		// Templates
		if cfg.TemplateHandler != nil {
			protected.GET("/templates", cfg.TemplateHandler.List)
			protected.POST("/templates", cfg.TemplateHandler.Create)
			protected.GET("/templates/:id", cfg.TemplateHandler.Get)
			protected.PUT("/templates/:id", cfg.TemplateHandler.Update)
			protected.DELETE("/templates/:id", cfg.TemplateHandler.Delete)
		}

		// Prompts
		if cfg.PromptHandler != nil {
			protected.POST("/prompts/render", cfg.PromptHandler.Render)
			protected.POST("/prompts", cfg.PromptHandler.Save)
			protected.GET("/prompts", cfg.PromptHandler.List)
			protected.PUT("/prompts/:id/folder", cfg.PromptHandler.MoveToFolder)
			protected.DELETE("/prompts/:id", cfg.PromptHandler.Delete)

			protected.POST("/prompt-folders", cfg.PromptHandler.CreateFolder)
			protected.GET("/prompt-folders", cfg.PromptHandler.ListFolders)
			protected.PUT("/prompt-folders/:id", cfg.PromptHandler.RenameFolder)
			protected.DELETE("/prompt-folders/:id", cfg.PromptHandler.DeleteFolder)
		}

		// Jobs
		if cfg.JobHandler != nil {
			protected.GET("/jobs", cfg.JobHandler.ListJobs)
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
			protected.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
			protected.POST("/jobs/:id/restart", cfg.JobHandler.RestartJob)
		}
	}

	return r
}
