package prompts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type PromptFolderRepo interface {
	Create(dbc dbctx.Context, folders []*types.PromptFolder) ([]*types.PromptFolder, error)
	GetByIDs(dbc dbctx.Context, folderIDs []uuid.UUID) ([]*types.PromptFolder, error)
	GetByID(dbc dbctx.Context, folderID uuid.UUID) (*types.PromptFolder, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PromptFolder, error)
	UpdateFields(dbc dbctx.Context, folderID uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, folderIDs []uuid.UUID) error
}

type promptFolderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptFolderRepo(db *gorm.DB, baseLog *logger.Logger) PromptFolderRepo {
	repoLog := baseLog.With("repo", "PromptFolderRepo")
	return &promptFolderRepo{db: db, log: repoLog}
}

func (r *promptFolderRepo) Create(dbc dbctx.Context, folders []*types.PromptFolder) ([]*types.PromptFolder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(folders) == 0 {
		return []*types.PromptFolder{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *promptFolderRepo) GetByIDs(dbc dbctx.Context, folderIDs []uuid.UUID) ([]*types.PromptFolder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PromptFolder
	if len(folderIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", folderIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil when no folder matches.
func (r *promptFolderRepo) GetByID(dbc dbctx.Context, folderID uuid.UUID) (*types.PromptFolder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if folderID == uuid.Nil {
		return nil, nil
	}

	var row types.PromptFolder
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", folderID).
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

func (r *promptFolderRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PromptFolder, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PromptFolder
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *promptFolderRepo) UpdateFields(dbc dbctx.Context, folderID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if folderID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.PromptFolder{}).
		Where("id = ?", folderID).
		Updates(updates).Error
}

func (r *promptFolderRepo) SoftDeleteByIDs(dbc dbctx.Context, folderIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(folderIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", folderIDs).
		Delete(&types.PromptFolder{}).Error; err != nil {
		return err
	}
	return nil
}
