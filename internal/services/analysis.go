package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/clients/redis"
	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/modules/analysis"
	"github.com/vintry/contentops-backend/internal/observability"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

// SimilarEntry is one neighbor of a calendar entry with its score.
type SimilarEntry struct {
	Entry *types.CalendarEntry `json:"entry"`
	Score float64              `json:"score"`
}

// EntrySimilarityResult is the on-demand per-entry view: capped neighbor
// list plus overlap warnings. Never persisted.
type EntrySimilarityResult struct {
	EntryID  uuid.UUID         `json:"entry_id"`
	Similar  []SimilarEntry    `json:"similar"`
	Warnings analysis.Warnings `json:"warnings"`
}

type AnalysisService interface {
	// RunForCalendar recomputes the report from the calendar's current
	// entries, replaces the stored snapshot and refreshes the cache. It
	// does not touch calendar status; that belongs to the analysis job.
	RunForCalendar(dbc dbctx.Context, calendarID uuid.UUID) (*analysis.Report, *types.AnalysisSnapshot, error)

	GetReportForRequestUser(ctx context.Context, calendarID uuid.UUID) (*analysis.Report, error)
	GetEntrySimilarityForRequestUser(dbc dbctx.Context, calendarID, entryID uuid.UUID) (*EntrySimilarityResult, error)
}

type analysisService struct {
	db           *gorm.DB
	log          *logger.Logger
	calendarRepo repos.ContentCalendarRepo
	entryRepo    repos.CalendarEntryRepo
	snapshotRepo repos.AnalysisSnapshotRepo
	reportCache  redis.ReportCache
}

func NewAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	calendarRepo repos.ContentCalendarRepo,
	entryRepo repos.CalendarEntryRepo,
	snapshotRepo repos.AnalysisSnapshotRepo,
	reportCache redis.ReportCache,
) AnalysisService {
	serviceLog := baseLog.With("service", "AnalysisService")
	return &analysisService{
		db:           db,
		log:          serviceLog,
		calendarRepo: calendarRepo,
		entryRepo:    entryRepo,
		snapshotRepo: snapshotRepo,
		reportCache:  reportCache,
	}
}

func (s *analysisService) RunForCalendar(dbc dbctx.Context, calendarID uuid.UUID) (*analysis.Report, *types.AnalysisSnapshot, error) {
	cal, err := s.calendarRepo.GetByID(dbc, calendarID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if cal == nil {
		return nil, nil, fmt.Errorf("calendar not found")
	}

	entries, err := s.entryRepo.GetByCalendarID(dbc, calendarID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch calendar entries: %w", err)
	}

	start := time.Now()
	report := analysis.Analyze(rowsFromEntries(entries))
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveAnalysis(report.TotalRows, time.Since(start))
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal report: %w", err)
	}
	snapshot := &types.AnalysisSnapshot{
		ID:             uuid.New(),
		CalendarID:     calendarID,
		TotalRows:      report.TotalRows,
		PublishedCount: report.PublishedCount,
		ClusterCount:   len(report.Clusters),
		Payload:        datatypes.JSON(payload),
		GeneratedAt:    time.Now().UTC(),
	}
	if err := s.snapshotRepo.UpsertByCalendarID(dbc, snapshot); err != nil {
		return nil, nil, fmt.Errorf("store analysis snapshot: %w", err)
	}

	if err := s.reportCache.SetReport(dbc.Ctx, calendarID, &report); err != nil {
		s.log.Warn("failed to cache analysis report (ignored)", "calendar_id", calendarID, "error", err)
	}
	return &report, snapshot, nil
}

// GetReportForRequestUser serves the report cache-first, then from the
// stored snapshot, and only computes synchronously when neither exists,
// for example on a calendar uploaded before its first analysis run
// finished.
func (s *analysisService) GetReportForRequestUser(ctx context.Context, calendarID uuid.UUID) (*analysis.Report, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	dbc := dbctx.New(ctx)
	cal, err := s.calendarRepo.GetByID(dbc, calendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if cal == nil || cal.UserID != rd.UserID {
		return nil, fmt.Errorf("calendar not found")
	}

	if report, ok, err := s.reportCache.GetReport(ctx, calendarID); err != nil {
		s.log.Warn("report cache read failed (ignored)", "calendar_id", calendarID, "error", err)
	} else if ok {
		return report, nil
	}

	snapshot, err := s.snapshotRepo.GetByCalendarID(dbc, calendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch analysis snapshot: %w", err)
	}
	if snapshot != nil {
		var report analysis.Report
		if err := json.Unmarshal(snapshot.Payload, &report); err == nil {
			if cacheErr := s.reportCache.SetReport(ctx, calendarID, &report); cacheErr != nil {
				s.log.Warn("failed to cache analysis report (ignored)", "calendar_id", calendarID, "error", cacheErr)
			}
			return &report, nil
		}
		s.log.Warn("stored snapshot payload is corrupt, recomputing", "calendar_id", calendarID, "snapshot_id", snapshot.ID)
	}

	report, _, err := s.RunForCalendar(dbc, calendarID)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *analysisService) GetEntrySimilarityForRequestUser(dbc dbctx.Context, calendarID, entryID uuid.UUID) (*EntrySimilarityResult, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	cal, err := s.calendarRepo.GetByID(dbc, calendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if cal == nil || cal.UserID != rd.UserID {
		return nil, fmt.Errorf("calendar not found")
	}

	entries, err := s.entryRepo.GetByCalendarID(dbc, calendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar entries: %w", err)
	}

	idx := -1
	for i, e := range entries {
		if e.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("entry not found")
	}

	rows := rowsFromEntries(entries)
	scored := analysis.SimilarRows(rows, idx)

	similar := make([]SimilarEntry, 0, len(scored))
	for _, sr := range scored {
		similar = append(similar, SimilarEntry{Entry: entries[sr.RowIndex], Score: sr.Score})
	}
	return &EntrySimilarityResult{
		EntryID:  entryID,
		Similar:  similar,
		Warnings: analysis.RowWarnings(rows, idx),
	}, nil
}

// rowsFromEntries keeps slice order, so row indexes in the report line
// up with the position-ordered entry list.
func rowsFromEntries(entries []*types.CalendarEntry) []analysis.Row {
	rows := make([]analysis.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, analysis.Row{
			Title:        e.Title,
			RawKeywords:  e.RawKeywords,
			Category:     e.Category,
			PublishedURL: e.PublishedURL,
			Description:  e.Description,
		})
	}
	return rows
}
