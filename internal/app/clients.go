package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/vintry/contentops-backend/internal/clients/redis"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/platform/objectstore"
	"github.com/vintry/contentops-backend/internal/realtime/bus"
)

type Clients struct {
	SSEBus      bus.Bus
	Bucket      objectstore.BucketService
	ReportCache redis.ReportCache
}

// wireClients connects the external dependencies. Redis is optional: without
// REDIS_ADDR the SSE bus is nil (single-instance fan-out only) and the report
// cache is a disabled no-op.
func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))

	var sseBus bus.Bus
	if redisAddr != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	}

	reportCache := redis.NewDisabledReportCache()
	if redisAddr != "" {
		rc, err := redis.NewReportCache(log)
		if err != nil {
			if sseBus != nil {
				_ = sseBus.Close()
			}
			return Clients{}, fmt.Errorf("init report cache: %w", err)
		}
		reportCache = rc
	}

	bucket, err := objectstore.NewBucketService(log)
	if err != nil {
		if sseBus != nil {
			_ = sseBus.Close()
		}
		_ = reportCache.Close()
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	return Clients{
		SSEBus:      sseBus,
		Bucket:      bucket,
		ReportCache: reportCache,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ReportCache != nil {
		_ = c.ReportCache.Close()
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
}
