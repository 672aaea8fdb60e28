package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type ContentCalendarRepo interface {
	Create(dbc dbctx.Context, calendars []*types.ContentCalendar) ([]*types.ContentCalendar, error)
	GetByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.ContentCalendar, error)
	GetByID(dbc dbctx.Context, calendarID uuid.UUID) (*types.ContentCalendar, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ContentCalendar, error)
	CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, calendarID uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error
	FullDeleteByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error
}

type contentCalendarRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentCalendarRepo(db *gorm.DB, baseLog *logger.Logger) ContentCalendarRepo {
	repoLog := baseLog.With("repo", "ContentCalendarRepo")
	return &contentCalendarRepo{db: db, log: repoLog}
}

func (r *contentCalendarRepo) Create(dbc dbctx.Context, calendars []*types.ContentCalendar) ([]*types.ContentCalendar, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(calendars) == 0 {
		return []*types.ContentCalendar{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

func (r *contentCalendarRepo) GetByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.ContentCalendar, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentCalendar
	if len(calendarIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", calendarIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil when no calendar matches.
func (r *contentCalendarRepo) GetByID(dbc dbctx.Context, calendarID uuid.UUID) (*types.ContentCalendar, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if calendarID == uuid.Nil {
		return nil, nil
	}

	var row types.ContentCalendar
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", calendarID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *contentCalendarRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ContentCalendar, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentCalendar
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentCalendarRepo) CountByUserID(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if userID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ContentCalendar{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *contentCalendarRepo) UpdateFields(dbc dbctx.Context, calendarID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if calendarID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.ContentCalendar{}).
		Where("id = ?", calendarID).
		Updates(updates).Error
}

func (r *contentCalendarRepo) SoftDeleteByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(calendarIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", calendarIDs).
		Delete(&types.ContentCalendar{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *contentCalendarRepo) FullDeleteByIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(calendarIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("id IN ?", calendarIDs).
		Delete(&types.ContentCalendar{}).Error; err != nil {
		return err
	}
	return nil
}
