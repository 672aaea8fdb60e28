package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/dberr"
	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/modules/prompting"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/envutil"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, name, description, body string) (*types.PromptTemplate, error)
	ListForRequestUser(dbc dbctx.Context) ([]*types.PromptTemplate, error)
	GetForRequestUser(dbc dbctx.Context, templateID uuid.UUID) (*types.PromptTemplate, error)
	UpdateTemplate(ctx context.Context, templateID uuid.UUID, name, description, body *string) (*types.PromptTemplate, error)
	DeleteForRequestUser(ctx context.Context, templateID uuid.UUID) error

	// EnsureDefaultsForUser creates any template from the seed pack the
	// user does not already have a template named after. Idempotent.
	EnsureDefaultsForUser(dbc dbctx.Context, userID uuid.UUID) error
}

type templateService struct {
	db           *gorm.DB
	log          *logger.Logger
	templateRepo repos.PromptTemplateRepo
	seedPack     *prompting.SeedPack
}

func NewTemplateService(db *gorm.DB, baseLog *logger.Logger, templateRepo repos.PromptTemplateRepo) (TemplateService, error) {
	serviceLog := baseLog.With("service", "TemplateService")

	seedPath := envutil.Str("TEMPLATE_SEED_PATH", "configs/templates.yaml")
	seedPack, err := prompting.LoadSeedFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("load template seed pack: %w", err)
	}
	serviceLog.Info("Loaded template seed pack", "path", seedPath, "templates", len(seedPack.Templates))

	return &templateService{
		db:           db,
		log:          serviceLog,
		templateRepo: templateRepo,
		seedPack:     seedPack,
	}, nil
}

func (ts *templateService) CreateTemplate(ctx context.Context, name, description, body string) (*types.PromptTemplate, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("template name required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("template body required")
	}

	template := &types.PromptTemplate{
		ID:          uuid.New(),
		UserID:      rd.UserID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Body:        body,
		Fields:      fieldsJSON(body),
	}
	if _, err := ts.templateRepo.Create(dbctx.New(ctx), []*types.PromptTemplate{template}); err != nil {
		if errors.Is(dberr.Map("create template", err), dberr.ErrConflict) {
			return nil, fmt.Errorf("a template named %q already exists", name)
		}
		return nil, fmt.Errorf("create template: %w", err)
	}
	return template, nil
}

// ListForRequestUser seeds the default pack for a user with no templates
// before listing, so a fresh account never sees an empty library.
func (ts *templateService) ListForRequestUser(dbc dbctx.Context) ([]*types.PromptTemplate, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	templates, err := ts.templateRepo.GetByUserID(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if len(templates) > 0 {
		return templates, nil
	}

	if err := ts.EnsureDefaultsForUser(dbc, rd.UserID); err != nil {
		return nil, err
	}
	return ts.templateRepo.GetByUserID(dbc, rd.UserID)
}

func (ts *templateService) GetForRequestUser(dbc dbctx.Context, templateID uuid.UUID) (*types.PromptTemplate, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ts.ownedTemplate(dbc, rd.UserID, templateID)
}

func (ts *templateService) UpdateTemplate(ctx context.Context, templateID uuid.UUID, name, description, body *string) (*types.PromptTemplate, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	if name == nil && description == nil && body == nil {
		return nil, fmt.Errorf("no template updates provided")
	}

	var out *types.PromptTemplate
	if err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		template, err := ts.ownedTemplate(dbc, rd.UserID, templateID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if name != nil {
			trimmed := strings.TrimSpace(*name)
			if trimmed == "" {
				return fmt.Errorf("template name required")
			}
			updates["name"] = trimmed
			template.Name = trimmed
		}
		if description != nil {
			updates["description"] = strings.TrimSpace(*description)
			template.Description = strings.TrimSpace(*description)
		}
		if body != nil {
			if strings.TrimSpace(*body) == "" {
				return fmt.Errorf("template body required")
			}
			updates["body"] = *body
			updates["fields"] = fieldsJSON(*body)
			template.Body = *body
			template.Fields = fieldsJSON(*body)
		}
		if err := ts.templateRepo.UpdateFields(dbc, templateID, updates); err != nil {
			if errors.Is(dberr.Map("update template", err), dberr.ErrConflict) {
				return fmt.Errorf("a template named %q already exists", template.Name)
			}
			return fmt.Errorf("update template: %w", err)
		}
		out = template
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (ts *templateService) DeleteForRequestUser(ctx context.Context, templateID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	dbc := dbctx.New(ctx)
	if _, err := ts.ownedTemplate(dbc, rd.UserID, templateID); err != nil {
		return err
	}
	return ts.templateRepo.SoftDeleteByIDs(dbc, []uuid.UUID{templateID})
}

func (ts *templateService) EnsureDefaultsForUser(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("user id required")
	}

	existing, err := ts.templateRepo.GetByUserID(dbc, userID)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[strings.ToLower(t.Name)] = true
	}

	var missing []*types.PromptTemplate
	for _, seed := range ts.seedPack.Templates {
		if have[strings.ToLower(seed.Name)] {
			continue
		}
		missing = append(missing, &types.PromptTemplate{
			ID:          uuid.New(),
			UserID:      userID,
			Name:        seed.Name,
			Description: seed.Description,
			Body:        seed.Body,
			Fields:      fieldsJSON(seed.Body),
			IsDefault:   true,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	if _, err := ts.templateRepo.Create(dbc, missing); err != nil {
		return fmt.Errorf("seed default templates: %w", err)
	}
	ts.log.Info("Seeded default templates", "user_id", userID, "created", len(missing))
	return nil
}

func (ts *templateService) ownedTemplate(dbc dbctx.Context, userID, templateID uuid.UUID) (*types.PromptTemplate, error) {
	template, err := ts.templateRepo.GetByID(dbc, templateID)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}
	if template == nil || template.UserID != userID {
		return nil, fmt.Errorf("template not found")
	}
	return template, nil
}

func fieldsJSON(body string) datatypes.JSON {
	raw, err := json.Marshal(prompting.ExtractFields(body))
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
