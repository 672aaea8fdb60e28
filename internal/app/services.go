package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/ingestion/spreadsheet"
	"github.com/vintry/contentops-backend/internal/jobs/pipeline/calendar_analysis"
	jobruntime "github.com/vintry/contentops-backend/internal/jobs/runtime"
	"github.com/vintry/contentops-backend/internal/jobs/worker"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/realtime"
	"github.com/vintry/contentops-backend/internal/services"
)

type Services struct {
	Avatar services.AvatarService
	Auth   services.AuthService
	User   services.UserService

	Calendar services.CalendarService
	Analysis services.AnalysisService
	Template services.TemplateService
	Prompt   services.PromptService

	JobNotifier      services.JobNotifier
	CalendarNotifier services.CalendarNotifier
	UserNotifier     services.UserNotifier
	JobService       services.JobService

	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseHub *realtime.SSEHub, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter
	if cfg.RunServer {
		// API: broadcast locally to connected clients
		emitter = &services.HubEmitter{Hub: sseHub}
	} else {
		// Worker: publish to Redis so the API can fan out to clients
		if clients.SSEBus == nil {
			return Services{}, fmt.Errorf("worker requires REDIS_ADDR to publish SSE events")
		}
		emitter = &services.RedisEmitter{Bus: clients.SSEBus}
	}

	jobNotifier := services.NewJobNotifier(emitter)
	calendarNotifier := services.NewCalendarNotifier(emitter)
	userNotifier := services.NewUserNotifier(emitter)

	jobService := services.NewJobService(db, log, repos.Jobs.JobRun, jobNotifier)

	avatarService, err := services.NewAvatarService(log, clients.Bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(
		db, log,
		repos.Auth.User,
		repos.Auth.UserToken,
		avatarService,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, repos.Auth.User, avatarService, userNotifier)

	parser := spreadsheet.NewParser(log)
	calendarService := services.NewCalendarService(
		db, log,
		repos.Calendar.ContentCalendar,
		repos.Calendar.CalendarEntry,
		repos.Calendar.AnalysisSnapshot,
		parser,
		clients.Bucket,
		jobService,
		clients.ReportCache,
	)
	analysisService := services.NewAnalysisService(
		db, log,
		repos.Calendar.ContentCalendar,
		repos.Calendar.CalendarEntry,
		repos.Calendar.AnalysisSnapshot,
		clients.ReportCache,
	)

	templateService, err := services.NewTemplateService(db, log, repos.Prompts.Template)
	if err != nil {
		return Services{}, fmt.Errorf("init template service: %w", err)
	}
	promptService := services.NewPromptService(
		db, log,
		repos.Prompts.Template,
		repos.Prompts.Folder,
		repos.Prompts.Saved,
		repos.Calendar.CalendarEntry,
		repos.Calendar.ContentCalendar,
	)

	// Job registry
	jobRegistry := jobruntime.NewRegistry()

	calendarAnalysis := calendar_analysis.New(
		db, log,
		repos.Calendar.ContentCalendar,
		analysisService,
		calendarNotifier,
	)
	if err := jobRegistry.Register(calendarAnalysis); err != nil {
		return Services{}, err
	}

	var jobWorker *worker.Worker
	if cfg.RunWorker {
		jobWorker = worker.NewWorker(db, log, repos.Jobs.JobRun, jobRegistry, jobNotifier)
	}

	return Services{
		Avatar:           avatarService,
		Auth:             authService,
		User:             userService,
		Calendar:         calendarService,
		Analysis:         analysisService,
		Template:         templateService,
		Prompt:           promptService,
		JobNotifier:      jobNotifier,
		CalendarNotifier: calendarNotifier,
		UserNotifier:     userNotifier,
		JobService:       jobService,
		JobRegistry:      jobRegistry,
		JobWorker:        jobWorker,
	}, nil
}
