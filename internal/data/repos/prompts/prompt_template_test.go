package prompts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vintry/contentops-backend/internal/data/repos/testutil"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
)

func seedPromptUser(t *testing.T, dbc dbctx.Context, email string) *types.User {
	t.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestPromptTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.WithTx(context.Background(), tx)
	repo := NewPromptTemplateRepo(db, testutil.Logger(t))
	u := seedPromptUser(t, dbc, "prompttemplaterepo@example.com")

	blog := &types.PromptTemplate{
		ID:     uuid.New(),
		UserID: u.ID,
		Name:   "Blog Post Draft",
		Body:   "Write a blog post titled {{title}}.",
		Fields: datatypes.JSON([]byte(`["title"]`)),
	}
	social := &types.PromptTemplate{
		ID:     uuid.New(),
		UserID: u.ID,
		Name:   "Social Caption",
		Body:   "Caption for {{title}} about {{keywords}}.",
		Fields: datatypes.JSON([]byte(`["title","keywords"]`)),
	}
	if _, err := repo.Create(dbc, []*types.PromptTemplate{blog, social}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Listing is alphabetical by name.
	list, err := repo.GetByUserID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Blog Post Draft" || list[1].Name != "Social Caption" {
		t.Fatalf("GetByUserID order: got %d rows", len(list))
	}

	got, err := repo.GetByID(dbc, blog.ID)
	if err != nil || got == nil || got.Name != "Blog Post Draft" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%+v", err, missing)
	}

	if err := repo.UpdateFields(dbc, blog.ID, map[string]any{"description": "Long-form drafts"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, blog.ID)
	if err != nil || got == nil || got.Description != "Long-form drafts" {
		t.Fatalf("UpdateFields not applied: err=%v got=%+v", err, got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{social.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	list, err = repo.GetByUserID(dbc, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("after soft delete GetByUserID: err=%v len=%d", err, len(list))
	}

	if err := repo.FullDeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("FullDeleteByUserIDs: %v", err)
	}
	list, err = repo.GetByUserID(dbc, u.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("after full delete GetByUserID: err=%v len=%d", err, len(list))
	}
}
