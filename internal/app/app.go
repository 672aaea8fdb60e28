package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/http"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/database"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics
	Server   *http.Server

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	db, err := database.Open(database.ConfigFromEnv(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(db, log); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	metrics := observability.Init(log)

	sseHub := realtime.NewSSEHub(log)

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(db, log)

	serviceset, err := wireServices(db, log, cfg, reposet, sseHub, clients)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, sseHub)
	middlewareset := wireMiddleware(log, serviceset)
	server := wireServer(log, metrics, handlerset, middlewareset)

	return &App{
		Log:      log,
		DB:       db,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		SSEHub:   sseHub,
		Metrics:  metrics,
		Server:   server,
	}, nil
}

// Start launches the background pieces: the job worker pool, the Redis
// forwarder that mirrors worker events to this instance's SSE clients, the
// metrics listener and SLO evaluator, and tracing. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}

	if a.Cfg.RunServer && a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			a.Log.Warn("start SSE forwarder failed", "error", err)
		}
	}

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartSLOEvaluator(ctx, a.Log)
	}

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: "contentops-backend",
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
// A worker-only process has no listener and just blocks until shutdown.
func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if !a.Cfg.RunServer {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Run(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(shutdownCtx)
		cancel()
		a.otelShutdown = nil
	}
	a.Clients.Close()
	if a.Log != nil {
		a.Log.Sync()
	}
}
