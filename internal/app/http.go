package app

import (
	"github.com/vintry/contentops-backend/internal/http"
	httpH "github.com/vintry/contentops-backend/internal/http/handlers"
	httpMW "github.com/vintry/contentops-backend/internal/http/middleware"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/realtime"
)

type Middleware struct {
	Auth            *httpMW.AuthMiddleware
	AuthRateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Calendar *httpH.CalendarHandler
	Analysis *httpH.AnalysisHandler
	Template *httpH.TemplateHandler
	Prompt   *httpH.PromptHandler
	Job      *httpH.JobHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Auth:     httpH.NewAuthHandler(log, services.Auth, services.Template),
		User:     httpH.NewUserHandler(services.User),
		Calendar: httpH.NewCalendarHandler(log, services.Calendar),
		Analysis: httpH.NewAnalysisHandler(services.Analysis, services.Calendar, services.JobService),
		Template: httpH.NewTemplateHandler(services.Template),
		Prompt:   httpH.NewPromptHandler(services.Prompt),
		Job:      httpH.NewJobHandler(services.JobService),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:            httpMW.NewAuthMiddleware(log, services.Auth),
		AuthRateLimiter: httpMW.NewAuthRateLimiter(),
	}
}

func wireServer(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:     log,
		Metrics: metrics,

		AuthMiddleware:  middleware.Auth,
		AuthRateLimiter: middleware.AuthRateLimiter,

		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		CalendarHandler: handlers.Calendar,
		AnalysisHandler: handlers.Analysis,
		TemplateHandler: handlers.Template,
		PromptHandler:   handlers.Prompt,
		JobHandler:      handlers.Job,
		RealtimeHandler: handlers.Realtime,

		HealthHandler: handlers.Health,
	})
}
