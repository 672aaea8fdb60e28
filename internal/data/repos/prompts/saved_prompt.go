package prompts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type SavedPromptRepo interface {
	Create(dbc dbctx.Context, prompts []*types.SavedPrompt) ([]*types.SavedPrompt, error)
	GetByIDs(dbc dbctx.Context, promptIDs []uuid.UUID) ([]*types.SavedPrompt, error)
	GetByID(dbc dbctx.Context, promptID uuid.UUID) (*types.SavedPrompt, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedPrompt, error)
	GetByFolderIDs(dbc dbctx.Context, folderIDs []uuid.UUID) ([]*types.SavedPrompt, error)
	UpdateFields(dbc dbctx.Context, promptID uuid.UUID, updates map[string]any) error
	ClearFolderByFolderIDs(dbc dbctx.Context, folderIDs []uuid.UUID) error
	SoftDeleteByIDs(dbc dbctx.Context, promptIDs []uuid.UUID) error
}

type savedPromptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedPromptRepo(db *gorm.DB, baseLog *logger.Logger) SavedPromptRepo {
	repoLog := baseLog.With("repo", "SavedPromptRepo")
	return &savedPromptRepo{db: db, log: repoLog}
}

func (r *savedPromptRepo) Create(dbc dbctx.Context, prompts []*types.SavedPrompt) ([]*types.SavedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(prompts) == 0 {
		return []*types.SavedPrompt{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *savedPromptRepo) GetByIDs(dbc dbctx.Context, promptIDs []uuid.UUID) ([]*types.SavedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SavedPrompt
	if len(promptIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", promptIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil when no prompt matches.
func (r *savedPromptRepo) GetByID(dbc dbctx.Context, promptID uuid.UUID) (*types.SavedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if promptID == uuid.Nil {
		return nil, nil
	}

	var row types.SavedPrompt
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", promptID).
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

func (r *savedPromptRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SavedPrompt
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

func (r *savedPromptRepo) GetByFolderIDs(dbc dbctx.Context, folderIDs []uuid.UUID) ([]*types.SavedPrompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SavedPrompt
	if len(folderIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("folder_id IN ?", folderIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *savedPromptRepo) UpdateFields(dbc dbctx.Context, promptID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if promptID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.SavedPrompt{}).
		Where("id = ?", promptID).
		Updates(updates).Error
}

// ClearFolderByFolderIDs detaches prompts from folders about to be
// deleted. The prompts survive at the root level.
func (r *savedPromptRepo) ClearFolderByFolderIDs(dbc dbctx.Context, folderIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(folderIDs) == 0 {
		return nil
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.SavedPrompt{}).
		Where("folder_id IN ?", folderIDs).
		Updates(map[string]any{
			"folder_id":  nil,
			"updated_at": time.Now(),
		}).Error
}

func (r *savedPromptRepo) SoftDeleteByIDs(dbc dbctx.Context, promptIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(promptIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", promptIDs).
		Delete(&types.SavedPrompt{}).Error; err != nil {
		return err
	}
	return nil
}
