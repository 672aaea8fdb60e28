package prompts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type PromptTemplateRepo interface {
	Create(dbc dbctx.Context, templates []*types.PromptTemplate) ([]*types.PromptTemplate, error)
	GetByIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.PromptTemplate, error)
	GetByID(dbc dbctx.Context, templateID uuid.UUID) (*types.PromptTemplate, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PromptTemplate, error)
	UpdateFields(dbc dbctx.Context, templateID uuid.UUID, updates map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, templateIDs []uuid.UUID) error
	FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type promptTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PromptTemplateRepo {
	repoLog := baseLog.With("repo", "PromptTemplateRepo")
	return &promptTemplateRepo{db: db, log: repoLog}
}

func (r *promptTemplateRepo) Create(dbc dbctx.Context, templates []*types.PromptTemplate) ([]*types.PromptTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(templates) == 0 {
		return []*types.PromptTemplate{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *promptTemplateRepo) GetByIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.PromptTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PromptTemplate
	if len(templateIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", templateIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID returns nil when no template matches.
func (r *promptTemplateRepo) GetByID(dbc dbctx.Context, templateID uuid.UUID) (*types.PromptTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if templateID == uuid.Nil {
		return nil, nil
	}

	var row types.PromptTemplate
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", templateID).
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

func (r *promptTemplateRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PromptTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PromptTemplate
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

func (r *promptTemplateRepo) UpdateFields(dbc dbctx.Context, templateID uuid.UUID, updates map[string]any) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if templateID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.PromptTemplate{}).
		Where("id = ?", templateID).
		Updates(updates).Error
}

func (r *promptTemplateRepo) SoftDeleteByIDs(dbc dbctx.Context, templateIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(templateIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", templateIDs).
		Delete(&types.PromptTemplate{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *promptTemplateRepo) FullDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(userIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Where("user_id IN ?", userIDs).
		Delete(&types.PromptTemplate{}).Error; err != nil {
		return err
	}
	return nil
}
