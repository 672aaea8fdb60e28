package calendar

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type CalendarEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.CalendarEntry) ([]*types.CalendarEntry, error)
	GetByIDs(dbc dbctx.Context, entryIDs []uuid.UUID) ([]*types.CalendarEntry, error)
	GetByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.CalendarEntry, error)
	GetByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) ([]*types.CalendarEntry, error)
	CountByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) (int64, error)
	FullDeleteByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error
}

type calendarEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCalendarEntryRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEntryRepo {
	repoLog := baseLog.With("repo", "CalendarEntryRepo")
	return &calendarEntryRepo{db: db, log: repoLog}
}

func (r *calendarEntryRepo) Create(dbc dbctx.Context, entries []*types.CalendarEntry) ([]*types.CalendarEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.CalendarEntry{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *calendarEntryRepo) GetByIDs(dbc dbctx.Context, entryIDs []uuid.UUID) ([]*types.CalendarEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CalendarEntry
	if len(entryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", entryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByCalendarIDs returns entries in sheet order, position ascending.
func (r *calendarEntryRepo) GetByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.CalendarEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CalendarEntry
	if len(calendarIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("calendar_id IN ?", calendarIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *calendarEntryRepo) GetByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) ([]*types.CalendarEntry, error) {
	return r.GetByCalendarIDs(dbc, []uuid.UUID{calendarID})
}

func (r *calendarEntryRepo) CountByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if calendarID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CalendarEntry{}).
		Where("calendar_id = ?", calendarID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FullDeleteByCalendarIDs wipes derived rows ahead of a rebuild, so the
// delete is unscoped rather than soft.
func (r *calendarEntryRepo) FullDeleteByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(calendarIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("calendar_id IN ?", calendarIDs).
		Delete(&types.CalendarEntry{}).Error; err != nil {
		return err
	}
	return nil
}
