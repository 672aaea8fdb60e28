package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/modules/prompting"
	"github.com/vintry/contentops-backend/internal/platform/ctxutil"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

// RenderPromptInput selects a template and the values to fill it with.
// EntryID supplies a calendar row's field values; Overrides win over
// entry values on key collisions.
type RenderPromptInput struct {
	TemplateID uuid.UUID
	EntryID    *uuid.UUID
	Overrides  map[string]string
}

// RenderedPrompt is the substitution result. Missing lists placeholders
// no value was found for; those stay verbatim in Text.
type RenderedPrompt struct {
	TemplateID uuid.UUID `json:"template_id"`
	Text       string    `json:"text"`
	Fields     []string  `json:"fields"`
	Missing    []string  `json:"missing"`
}

type SavePromptInput struct {
	Title      string
	Body       string
	FolderID   *uuid.UUID
	TemplateID *uuid.UUID
	CalendarID *uuid.UUID
	RowIndex   *int
}

type PromptService interface {
	RenderForRequestUser(dbc dbctx.Context, input RenderPromptInput) (*RenderedPrompt, error)

	SavePrompt(ctx context.Context, input SavePromptInput) (*types.SavedPrompt, error)
	ListForRequestUser(dbc dbctx.Context) ([]*types.SavedPrompt, error)
	MoveToFolder(ctx context.Context, promptID uuid.UUID, folderID *uuid.UUID) (*types.SavedPrompt, error)
	DeleteForRequestUser(ctx context.Context, promptID uuid.UUID) error

	CreateFolder(ctx context.Context, name string) (*types.PromptFolder, error)
	ListFoldersForRequestUser(dbc dbctx.Context) ([]*types.PromptFolder, error)
	RenameFolder(ctx context.Context, folderID uuid.UUID, name string) (*types.PromptFolder, error)
	DeleteFolder(ctx context.Context, folderID uuid.UUID) error
}

type promptService struct {
	db           *gorm.DB
	log          *logger.Logger
	templateRepo repos.PromptTemplateRepo
	folderRepo   repos.PromptFolderRepo
	promptRepo   repos.SavedPromptRepo
	entryRepo    repos.CalendarEntryRepo
	calendarRepo repos.ContentCalendarRepo
}

func NewPromptService(
	db *gorm.DB,
	baseLog *logger.Logger,
	templateRepo repos.PromptTemplateRepo,
	folderRepo repos.PromptFolderRepo,
	promptRepo repos.SavedPromptRepo,
	entryRepo repos.CalendarEntryRepo,
	calendarRepo repos.ContentCalendarRepo,
) PromptService {
	serviceLog := baseLog.With("service", "PromptService")
	return &promptService{
		db:           db,
		log:          serviceLog,
		templateRepo: templateRepo,
		folderRepo:   folderRepo,
		promptRepo:   promptRepo,
		entryRepo:    entryRepo,
		calendarRepo: calendarRepo,
	}
}

func (ps *promptService) RenderForRequestUser(dbc dbctx.Context, input RenderPromptInput) (*RenderedPrompt, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	template, err := ps.templateRepo.GetByID(dbc, input.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}
	if template == nil || template.UserID != rd.UserID {
		return nil, fmt.Errorf("template not found")
	}

	values := map[string]string{}
	if input.EntryID != nil {
		entryValues, err := ps.entryFieldValues(dbc, rd.UserID, *input.EntryID)
		if err != nil {
			return nil, err
		}
		for k, v := range entryValues {
			values[strings.ToLower(k)] = v
		}
	}
	for k, v := range input.Overrides {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			values[k] = v
		}
	}

	res := prompting.Render(template.Body, values)
	return &RenderedPrompt{
		TemplateID: template.ID,
		Text:       res.Text,
		Fields:     res.Fields,
		Missing:    res.Missing,
	}, nil
}

func (ps *promptService) SavePrompt(ctx context.Context, input SavePromptInput) (*types.SavedPrompt, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("prompt title required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, fmt.Errorf("prompt body required")
	}

	var out *types.SavedPrompt
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if input.FolderID != nil {
			if _, err := ps.ownedFolder(dbc, rd.UserID, *input.FolderID); err != nil {
				return err
			}
		}
		prompt := &types.SavedPrompt{
			ID:         uuid.New(),
			UserID:     rd.UserID,
			FolderID:   input.FolderID,
			Title:      input.Title,
			Body:       input.Body,
			TemplateID: input.TemplateID,
			CalendarID: input.CalendarID,
			RowIndex:   input.RowIndex,
		}
		if _, err := ps.promptRepo.Create(dbc, []*types.SavedPrompt{prompt}); err != nil {
			return fmt.Errorf("create saved prompt: %w", err)
		}
		out = prompt
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *promptService) ListForRequestUser(dbc dbctx.Context) ([]*types.SavedPrompt, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ps.promptRepo.GetByUserID(dbc, rd.UserID)
}

func (ps *promptService) MoveToFolder(ctx context.Context, promptID uuid.UUID, folderID *uuid.UUID) (*types.SavedPrompt, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	var out *types.SavedPrompt
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		prompt, err := ps.ownedPrompt(dbc, rd.UserID, promptID)
		if err != nil {
			return err
		}
		if folderID != nil {
			if _, err := ps.ownedFolder(dbc, rd.UserID, *folderID); err != nil {
				return err
			}
		}
		var folderValue any
		if folderID != nil {
			folderValue = *folderID
		}
		if err := ps.promptRepo.UpdateFields(dbc, promptID, map[string]any{"folder_id": folderValue}); err != nil {
			return fmt.Errorf("move prompt: %w", err)
		}
		prompt.FolderID = folderID
		out = prompt
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *promptService) DeleteForRequestUser(ctx context.Context, promptID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}
	dbc := dbctx.New(ctx)
	if _, err := ps.ownedPrompt(dbc, rd.UserID, promptID); err != nil {
		return err
	}
	return ps.promptRepo.SoftDeleteByIDs(dbc, []uuid.UUID{promptID})
}

func (ps *promptService) CreateFolder(ctx context.Context, name string) (*types.PromptFolder, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name required")
	}

	folder := &types.PromptFolder{
		ID:     uuid.New(),
		UserID: rd.UserID,
		Name:   name,
	}
	if _, err := ps.folderRepo.Create(dbctx.New(ctx), []*types.PromptFolder{folder}); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

func (ps *promptService) ListFoldersForRequestUser(dbc dbctx.Context) ([]*types.PromptFolder, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	return ps.folderRepo.GetByUserID(dbc, rd.UserID)
}

func (ps *promptService) RenameFolder(ctx context.Context, folderID uuid.UUID, name string) (*types.PromptFolder, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name required")
	}

	dbc := dbctx.New(ctx)
	folder, err := ps.ownedFolder(dbc, rd.UserID, folderID)
	if err != nil {
		return nil, err
	}
	if err := ps.folderRepo.UpdateFields(dbc, folderID, map[string]any{"name": name}); err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	folder.Name = name
	return folder, nil
}

// DeleteFolder moves the folder's prompts to the root before removing
// the folder. Prompts are never deleted by folder deletion.
func (ps *promptService) DeleteFolder(ctx context.Context, folderID uuid.UUID) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("unauthorized")
	}

	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := ps.ownedFolder(dbc, rd.UserID, folderID); err != nil {
			return err
		}
		if err := ps.promptRepo.ClearFolderByFolderIDs(dbc, []uuid.UUID{folderID}); err != nil {
			return fmt.Errorf("detach prompts from folder: %w", err)
		}
		if err := ps.folderRepo.SoftDeleteByIDs(dbc, []uuid.UUID{folderID}); err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}

func (ps *promptService) entryFieldValues(dbc dbctx.Context, userID, entryID uuid.UUID) (map[string]string, error) {
	entries, err := ps.entryRepo.GetByIDs(dbc, []uuid.UUID{entryID})
	if err != nil {
		return nil, fmt.Errorf("fetch entry: %w", err)
	}
	if len(entries) == 0 || entries[0] == nil {
		return nil, fmt.Errorf("entry not found")
	}
	entry := entries[0]

	cal, err := ps.calendarRepo.GetByID(dbc, entry.CalendarID)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if cal == nil || cal.UserID != userID {
		return nil, fmt.Errorf("entry not found")
	}

	values := map[string]string{}
	if len(entry.FieldValues) > 0 {
		if err := json.Unmarshal(entry.FieldValues, &values); err != nil {
			return nil, fmt.Errorf("decode entry field values: %w", err)
		}
	}
	return values, nil
}

func (ps *promptService) ownedPrompt(dbc dbctx.Context, userID, promptID uuid.UUID) (*types.SavedPrompt, error) {
	prompt, err := ps.promptRepo.GetByID(dbc, promptID)
	if err != nil {
		return nil, fmt.Errorf("fetch prompt: %w", err)
	}
	if prompt == nil || prompt.UserID != userID {
		return nil, fmt.Errorf("prompt not found")
	}
	return prompt, nil
}

func (ps *promptService) ownedFolder(dbc dbctx.Context, userID, folderID uuid.UUID) (*types.PromptFolder, error) {
	folder, err := ps.folderRepo.GetByID(dbc, folderID)
	if err != nil {
		return nil, fmt.Errorf("fetch folder: %w", err)
	}
	if folder == nil || folder.UserID != userID {
		return nil, fmt.Errorf("folder not found")
	}
	return folder, nil
}
