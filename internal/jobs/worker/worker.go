package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	"github.com/vintry/contentops-backend/internal/jobs/runtime"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/services"
)

var tracer = otel.Tracer("jobs/worker")

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   services.JobNotifier
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify services.JobNotifier) *Worker {
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
	}
}

func (w *Worker) Start(ctx context.Context) {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("Starting job worker pool",
		"concurrency", concurrency,
		"job_types", w.registry.Types(),
	)

	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		go w.runLoop(ctx, workerID)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	const maxAttempts = 5
	retryDelay := 30 * time.Second
	staleRunning := 2 * time.Minute
	// Must stay well under staleRunning or a healthy run gets reclaimed.
	heartbeatEvery := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			job, err := w.repo.ClaimNextRunnable(dbctx.New(ctx), maxAttempts, retryDelay, staleRunning)
			if err != nil {
				w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
				continue
			}
			if job == nil {
				continue
			}

			h, ok := w.registry.Get(job.JobType)
			if !ok {
				w.log.Warn("No handler registered for job_type",
					"worker_id", workerID,
					"job_type", job.JobType,
					"job_id", job.ID,
				)
				jc := runtime.NewContext(ctx, w.db, job, w.repo, w.notify)
				jc.Fail("dispatch", &missingHandlerError{JobType: job.JobType})
				if metrics := observability.Current(); metrics != nil {
					metrics.ObserveJobRun(job.JobType, job.Status, 0)
				}
				continue
			}

			// The claimed row carries only string trace IDs, so the
			// span roots a fresh trace; logs join via the payload IDs.
			runCtx, span := tracer.Start(ctx, "job.run", trace.WithAttributes(
				attribute.String("job.type", job.JobType),
				attribute.String("job.id", job.ID.String()),
				attribute.Int("job.attempt", job.Attempts),
			))
			jc := runtime.NewContext(runCtx, w.db, job, w.repo, w.notify)

			// Tick the heartbeat column while the handler runs so a
			// long run is not reclaimed as stale by another worker.
			hbStop := make(chan struct{})
			hbDone := make(chan struct{})
			go func() {
				defer close(hbDone)
				t := time.NewTicker(heartbeatEvery)
				defer t.Stop()
				for {
					select {
					case <-runCtx.Done():
						return
					case <-hbStop:
						return
					case <-t.C:
						if err := w.repo.Heartbeat(dbctx.New(runCtx), job.ID); err != nil {
							w.log.Warn("Job heartbeat failed",
								"worker_id", workerID,
								"job_id", job.ID,
								"error", err,
							)
						}
					}
				}
			}()

			start := time.Now()
			func() {
				defer func() {
					if r := recover(); r != nil {
						w.log.Error("Job handler panic",
							"worker_id", workerID,
							"job_id", job.ID,
							"job_type", job.JobType,
							"panic", r,
						)
						err := &panicError{Val: r}
						span.RecordError(err)
						span.SetStatus(codes.Error, err.Error())
						jc.Fail("panic", err)
					}
				}()

				if runErr := h.Run(jc); runErr != nil {
					// Handlers set their own terminal status; an error
					// return means the run ended without one.
					span.RecordError(runErr)
					span.SetStatus(codes.Error, runErr.Error())
					jc.Fail("run", runErr)
				}
			}()
			close(hbStop)
			<-hbDone
			span.SetAttributes(attribute.String("job.status", job.Status))
			span.End()
			if metrics := observability.Current(); metrics != nil {
				metrics.ObserveJobRun(job.JobType, job.Status, time.Since(start))
			}
		}
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
