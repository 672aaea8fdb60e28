package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vintry/contentops-backend/internal/modules/analysis"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

// ReportCache keeps rendered analysis reports in Redis so repeat reads of an
// unchanged calendar skip the snapshot table. Entries are invalidated whenever
// a calendar is re-analyzed, remapped, or deleted.
type ReportCache interface {
	GetReport(ctx context.Context, calendarID uuid.UUID) (*analysis.Report, bool, error)
	SetReport(ctx context.Context, calendarID uuid.UUID, report *analysis.Report) error
	InvalidateReport(ctx context.Context, calendarID uuid.UUID) error
	Close() error
}

type reportCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewReportCache(log *logger.Logger) (ReportCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &reportCache{
		log: log.With("service", "AnalysisReportCache"),
		rdb: rdb,
		ttl: envutil.Duration("ANALYSIS_CACHE_TTL", 15*time.Minute),
	}, nil
}

// NewDisabledReportCache returns a cache whose reads always miss and whose
// writes do nothing, for deployments without Redis.
func NewDisabledReportCache() ReportCache {
	return (*reportCache)(nil)
}

func reportKey(calendarID uuid.UUID) string {
	return "analysis:report:" + calendarID.String()
}

func (c *reportCache) cacheOp(op, outcome string) {
	if metrics := observability.Current(); metrics != nil {
		metrics.CacheOp(op, outcome)
	}
}

func (c *reportCache) GetReport(ctx context.Context, calendarID uuid.UUID) (*analysis.Report, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, reportKey(calendarID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.cacheOp("get", "miss")
			return nil, false, nil
		}
		c.cacheOp("get", "error")
		return nil, false, fmt.Errorf("redis get report: %w", err)
	}
	var report analysis.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		// A stale or corrupt entry is treated as a miss and evicted.
		c.log.Warn("bad cached analysis report", "calendar_id", calendarID, "error", err)
		_ = c.rdb.Del(ctx, reportKey(calendarID)).Err()
		c.cacheOp("get", "miss")
		return nil, false, nil
	}
	c.cacheOp("get", "hit")
	return &report, true, nil
}

func (c *reportCache) SetReport(ctx context.Context, calendarID uuid.UUID, report *analysis.Report) error {
	if c == nil || c.rdb == nil || report == nil {
		return nil
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal analysis report: %w", err)
	}
	if err := c.rdb.Set(ctx, reportKey(calendarID), raw, c.ttl).Err(); err != nil {
		c.cacheOp("set", "error")
		return fmt.Errorf("redis set report: %w", err)
	}
	c.cacheOp("set", "ok")
	return nil
}

func (c *reportCache) InvalidateReport(ctx context.Context, calendarID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, reportKey(calendarID)).Err(); err != nil {
		c.cacheOp("invalidate", "error")
		return fmt.Errorf("redis invalidate report: %w", err)
	}
	c.cacheOp("invalidate", "ok")
	return nil
}

func (c *reportCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
