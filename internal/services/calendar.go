package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/clients/redis"
	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/ingestion/spreadsheet"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/platform/objectstore"
)

// CalendarUpload is one spreadsheet received from a client.
type CalendarUpload struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Data         []byte
}

type CalendarService interface {
	UploadCalendar(ctx context.Context, name string, upload CalendarUpload) (*types.ContentCalendar, error)
	ListForRequestUser(dbc dbctx.Context) ([]*types.ContentCalendar, error)
	GetForRequestUser(dbc dbctx.Context, calendarID uuid.UUID) (*types.ContentCalendar, error)
	GetEntriesForRequestUser(dbc dbctx.Context, calendarID uuid.UUID) ([]*types.CalendarEntry, error)
	RemapColumns(ctx context.Context, calendarID uuid.UUID, mapping spreadsheet.Mapping) (*types.ContentCalendar, error)
	DeleteForRequestUser(ctx context.Context, calendarID uuid.UUID) error
}

type calendarService struct {
	db            *gorm.DB
	log           *logger.Logger
	calendarRepo  repos.ContentCalendarRepo
	entryRepo     repos.CalendarEntryRepo
	snapshotRepo  repos.AnalysisSnapshotRepo
	parser        *spreadsheet.Parser
	bucketService objectstore.BucketService
	jobService    JobService
	reportCache   redis.ReportCache
}

func NewCalendarService(
	db *gorm.DB,
	baseLog *logger.Logger,
	calendarRepo repos.ContentCalendarRepo,
	entryRepo repos.CalendarEntryRepo,
	snapshotRepo repos.AnalysisSnapshotRepo,
	parser *spreadsheet.Parser,
	bucketService objectstore.BucketService,
	jobService JobService,
	reportCache redis.ReportCache,
) CalendarService {
	serviceLog := baseLog.With("service", "CalendarService")
	return &calendarService{
		db:            db,
		log:           serviceLog,
		calendarRepo:  calendarRepo,
		entryRepo:     entryRepo,
		snapshotRepo:  snapshotRepo,
		parser:        parser,
		bucketService: bucketService,
		jobService:    jobService,
		reportCache:   reportCache,
	}
}

// UploadCalendar parses the sheet, stores the original file, persists the
// calendar with its detected column mapping and mapped entries, and queues
// an analysis run. When header detection cannot find a title column the
// calendar is still stored, with no entries, so the client can fix the
// mapping through RemapColumns instead of re-uploading.
func (cs *calendarService) UploadCalendar(ctx context.Context, name string, upload CalendarUpload) (*types.ContentCalendar, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("empty upload")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSuffix(upload.OriginalName, filepath.Ext(upload.OriginalName))
	}
	if name == "" {
		name = "Untitled calendar"
	}

	sheet, err := cs.parser.Parse(upload.OriginalName, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}

	mapping := spreadsheet.DetectMapping(sheet.Headers)
	mappingValid := mapping.Validate(len(sheet.Headers)) == nil

	headersJSON, err := json.Marshal(sheet.Headers)
	if err != nil {
		return nil, fmt.Errorf("marshal headers: %w", err)
	}
	cellsJSON, err := json.Marshal(sheet.Rows)
	if err != nil {
		return nil, fmt.Errorf("marshal cells: %w", err)
	}
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("marshal column mapping: %w", err)
	}

	calendarID := uuid.New()
	storageKey := fmt.Sprintf("calendar_upload/%s/%s/%d_%s",
		rd.UserID.String(), calendarID.String(), time.Now().UnixNano(), sanitizeFilename(upload.OriginalName))

	if err := cs.bucketService.UploadFile(ctx, objectstore.BucketCategoryCalendar, storageKey, bytes.NewReader(upload.Data)); err != nil {
		return nil, fmt.Errorf("store calendar file: %w", err)
	}

	calendar := &types.ContentCalendar{
		ID:            calendarID,
		UserID:        rd.UserID,
		Name:          name,
		OriginalName:  upload.OriginalName,
		MimeType:      upload.MimeType,
		SizeBytes:     upload.SizeBytes,
		StorageKey:    storageKey,
		FileURL:       cs.bucketService.GetPublicURL(objectstore.BucketCategoryCalendar, storageKey),
		SheetName:     sheet.Name,
		Headers:       datatypes.JSON(headersJSON),
		Cells:         datatypes.JSON(cellsJSON),
		ColumnMapping: datatypes.JSON(mappingJSON),
		RowCount:      len(sheet.Rows),
		Status:        types.CalendarStatusUploaded,
	}

	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := cs.calendarRepo.Create(dbc, []*types.ContentCalendar{calendar}); err != nil {
			return fmt.Errorf("create calendar: %w", err)
		}
		if mappingValid {
			entries := buildEntries(calendar.ID, spreadsheet.ApplyMapping(sheet, mapping))
			if _, err := cs.entryRepo.Create(dbc, entries); err != nil {
				return fmt.Errorf("create calendar entries: %w", err)
			}
			if _, _, err := cs.jobService.EnqueueCalendarAnalysisIfNeeded(dbc, rd.UserID, calendar.ID, "upload"); err != nil {
				return fmt.Errorf("enqueue analysis: %w", err)
			}
		}
		return nil
	}); err != nil {
		if delErr := cs.bucketService.DeleteFile(ctx, objectstore.BucketCategoryCalendar, storageKey); delErr != nil {
			cs.log.Warn("failed to clean up calendar file after rollback (ignored)", "storage_key", storageKey, "error", delErr)
		}
		return nil, err
	}

	if !mappingValid {
		cs.log.Warn("calendar uploaded without a usable title column", "calendar_id", calendar.ID, "headers", sheet.Headers)
	}
	return calendar, nil
}

func (cs *calendarService) ListForRequestUser(dbc dbctx.Context) ([]*types.ContentCalendar, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return cs.calendarRepo.GetByUserID(dbc, rd.UserID)
}

func (cs *calendarService) GetForRequestUser(dbc dbctx.Context, calendarID uuid.UUID) (*types.ContentCalendar, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return cs.ownedCalendar(dbc, rd.UserID, calendarID)
}

func (cs *calendarService) GetEntriesForRequestUser(dbc dbctx.Context, calendarID uuid.UUID) ([]*types.CalendarEntry, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if _, err := cs.ownedCalendar(dbc, rd.UserID, calendarID); err != nil {
		return nil, err
	}
	return cs.entryRepo.GetByCalendarID(dbc, calendarID)
}

// RemapColumns rebinds the stored sheet to a client-provided mapping,
// rebuilds the entries from the raw cells, and queues a fresh analysis.
// The stale snapshot and cached report are dropped so reads cannot serve
// results computed under the old mapping.
func (cs *calendarService) RemapColumns(ctx context.Context, calendarID uuid.UUID, mapping spreadsheet.Mapping) (*types.ContentCalendar, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var calendar *types.ContentCalendar
	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		cal, err := cs.ownedCalendar(dbc, rd.UserID, calendarID)
		if err != nil {
			return err
		}

		var headers []string
		if err := json.Unmarshal(cal.Headers, &headers); err != nil {
			return fmt.Errorf("decode stored headers: %w", err)
		}
		if err := mapping.Validate(len(headers)); err != nil {
			return fmt.Errorf("invalid mapping: %w", err)
		}

		var rows [][]string
		if err := json.Unmarshal(cal.Cells, &rows); err != nil {
			return fmt.Errorf("decode stored cells: %w", err)
		}
		sheet := &spreadsheet.Sheet{Name: cal.SheetName, Headers: headers, Rows: rows}

		if err := cs.entryRepo.FullDeleteByCalendarIDs(dbc, []uuid.UUID{cal.ID}); err != nil {
			return fmt.Errorf("clear calendar entries: %w", err)
		}
		entries := buildEntries(cal.ID, spreadsheet.ApplyMapping(sheet, mapping))
		if _, err := cs.entryRepo.Create(dbc, entries); err != nil {
			return fmt.Errorf("create calendar entries: %w", err)
		}

		mappingJSON, err := json.Marshal(mapping)
		if err != nil {
			return fmt.Errorf("marshal column mapping: %w", err)
		}
		if err := cs.calendarRepo.UpdateFields(dbc, cal.ID, map[string]any{
			"column_mapping": datatypes.JSON(mappingJSON),
			"status":         types.CalendarStatusUploaded,
			"analyzed_at":    nil,
		}); err != nil {
			return fmt.Errorf("update calendar: %w", err)
		}
		if err := cs.snapshotRepo.FullDeleteByCalendarIDs(dbc, []uuid.UUID{cal.ID}); err != nil {
			return fmt.Errorf("drop stale snapshot: %w", err)
		}

		if _, _, err := cs.jobService.EnqueueCalendarAnalysisIfNeeded(dbc, rd.UserID, cal.ID, "remap"); err != nil {
			return fmt.Errorf("enqueue analysis: %w", err)
		}

		cal.ColumnMapping = datatypes.JSON(mappingJSON)
		cal.Status = types.CalendarStatusUploaded
		cal.AnalyzedAt = nil
		calendar = cal
		return nil
	}); err != nil {
		return nil, err
	}

	if err := cs.reportCache.InvalidateReport(ctx, calendarID); err != nil {
		cs.log.Warn("failed to invalidate cached report (ignored)", "calendar_id", calendarID, "error", err)
	}
	return calendar, nil
}

func (cs *calendarService) DeleteForRequestUser(ctx context.Context, calendarID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}

	var storagePrefix string
	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		cal, err := cs.ownedCalendar(dbc, rd.UserID, calendarID)
		if err != nil {
			return err
		}
		storagePrefix = fmt.Sprintf("calendar_upload/%s/%s/", rd.UserID.String(), cal.ID.String())

		if err := cs.entryRepo.FullDeleteByCalendarIDs(dbc, []uuid.UUID{cal.ID}); err != nil {
			return fmt.Errorf("delete calendar entries: %w", err)
		}
		if err := cs.snapshotRepo.FullDeleteByCalendarIDs(dbc, []uuid.UUID{cal.ID}); err != nil {
			return fmt.Errorf("delete analysis snapshot: %w", err)
		}
		if err := cs.calendarRepo.SoftDeleteByIDs(dbc, []uuid.UUID{cal.ID}); err != nil {
			return fmt.Errorf("delete calendar: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	// Storage and cache cleanup happen after commit; failures leave
	// orphans, not broken rows.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cs.bucketService.DeletePrefix(gctx, objectstore.BucketCategoryCalendar, storagePrefix)
	})
	g.Go(func() error {
		return cs.reportCache.InvalidateReport(gctx, calendarID)
	})
	if err := g.Wait(); err != nil {
		cs.log.Warn("calendar cleanup incomplete (ignored)", "calendar_id", calendarID, "error", err)
	}
	return nil
}

func (cs *calendarService) ownedCalendar(dbc dbctx.Context, userID, calendarID uuid.UUID) (*types.ContentCalendar, error) {
	cal, err := cs.calendarRepo.GetByID(dbc, calendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if cal == nil || cal.UserID != userID {
		return nil, fmt.Errorf("calendar not found")
	}
	return cal, nil
}

func buildEntries(calendarID uuid.UUID, rows []spreadsheet.MappedRow) []*types.CalendarEntry {
	entries := make([]*types.CalendarEntry, 0, len(rows))
	for _, row := range rows {
		fieldsJSON, err := json.Marshal(row.Fields)
		if err != nil {
			fieldsJSON = []byte("{}")
		}
		entries = append(entries, &types.CalendarEntry{
			ID:           uuid.New(),
			CalendarID:   calendarID,
			Position:     row.Position,
			Title:        row.Title,
			RawKeywords:  row.RawKeywords,
			Category:     row.Category,
			PublishedURL: row.PublishedURL,
			Description:  row.Description,
			FieldValues:  datatypes.JSON(fieldsJSON),
		})
	}
	return entries
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
