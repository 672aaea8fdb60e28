package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type AnalysisSnapshotRepo interface {
	UpsertByCalendarID(dbc dbctx.Context, snapshot *types.AnalysisSnapshot) error
	GetByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) (*types.AnalysisSnapshot, error)
	GetByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.AnalysisSnapshot, error)
	FullDeleteByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error
}

type analysisSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisSnapshotRepo {
	repoLog := baseLog.With("repo", "AnalysisSnapshotRepo")
	return &analysisSnapshotRepo{db: db, log: repoLog}
}

func (r *analysisSnapshotRepo) UpsertByCalendarID(dbc dbctx.Context, snapshot *types.AnalysisSnapshot) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if snapshot == nil || snapshot.CalendarID == uuid.Nil {
		return nil
	}
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	snapshot.UpdatedAt = time.Now().UTC()

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "calendar_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_rows",
				"published_count",
				"cluster_count",
				"payload",
				"generated_at",
				"updated_at",
			}),
		}).
		Create(snapshot).Error
}

// GetByCalendarID returns nil when the calendar has never been analyzed.
func (r *analysisSnapshotRepo) GetByCalendarID(dbc dbctx.Context, calendarID uuid.UUID) (*types.AnalysisSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if calendarID == uuid.Nil {
		return nil, nil
	}

	var row types.AnalysisSnapshot
	err := transaction.WithContext(dbc.Ctx).
		Where("calendar_id = ?", calendarID).
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

func (r *analysisSnapshotRepo) GetByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) ([]*types.AnalysisSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnalysisSnapshot
	if len(calendarIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("calendar_id IN ?", calendarIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analysisSnapshotRepo) FullDeleteByCalendarIDs(dbc dbctx.Context, calendarIDs []uuid.UUID) error {
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
		Delete(&types.AnalysisSnapshot{}).Error; err != nil {
		return err
	}
	return nil
}
