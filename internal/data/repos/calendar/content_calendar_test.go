package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/vintry/contentops-backend/internal/data/repos/testutil"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/dbctx"
)

func seedUser(t *testing.T, dbc dbctx.Context, email string) *types.User {
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

func TestContentCalendarRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.WithTx(context.Background(), tx)
	repo := NewContentCalendarRepo(db, testutil.Logger(t))
	u := seedUser(t, dbc, "contentcalendarrepo@example.com")

	now := time.Now().UTC()
	first := &types.ContentCalendar{
		ID:           uuid.New(),
		UserID:       u.ID,
		Name:         "Q1 Calendar",
		OriginalName: "q1.xlsx",
		MimeType:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		SizeBytes:    1024,
		StorageKey:   "calendar_upload/x/y/q1.xlsx",
		SheetName:    "Sheet1",
		Headers:      datatypes.JSON([]byte(`["Title","Keywords"]`)),
		Cells:        datatypes.JSON([]byte(`[["a","b"]]`)),
		Status:       types.CalendarStatusUploaded,
		RowCount:     1,
		CreatedAt:    now.Add(-2 * time.Hour),
		UpdatedAt:    now.Add(-2 * time.Hour),
	}
	second := &types.ContentCalendar{
		ID:           uuid.New(),
		UserID:       u.ID,
		Name:         "Q2 Calendar",
		OriginalName: "q2.csv",
		MimeType:     "text/csv",
		SizeBytes:    512,
		StorageKey:   "calendar_upload/x/y/q2.csv",
		SheetName:    "q2",
		Headers:      datatypes.JSON([]byte(`["Title"]`)),
		Cells:        datatypes.JSON([]byte(`[["c"]]`)),
		Status:       types.CalendarStatusUploaded,
		RowCount:     1,
		CreatedAt:    now.Add(-1 * time.Hour),
		UpdatedAt:    now.Add(-1 * time.Hour),
	}

	if _, err := repo.Create(dbc, []*types.ContentCalendar{first, second}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "Q1 Calendar" {
		t.Fatalf("GetByID: got %+v", got)
	}

	if missing, err := repo.GetByID(dbc, uuid.New()); err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v got=%+v", err, missing)
	}

	// Listing is newest first.
	list, err := repo.GetByUserID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("GetByUserID order: got %d rows", len(list))
	}

	if count, err := repo.CountByUserID(dbc, u.ID); err != nil || count != 2 {
		t.Fatalf("CountByUserID: err=%v count=%d", err, count)
	}

	if err := repo.UpdateFields(dbc, first.ID, map[string]any{
		"status":      types.CalendarStatusReady,
		"analyzed_at": now,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, first.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after update: err=%v", err)
	}
	if got.Status != types.CalendarStatusReady || got.AnalyzedAt == nil {
		t.Fatalf("UpdateFields not applied: status=%q analyzed_at=%v", got.Status, got.AnalyzedAt)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{first.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, first.ID); err != nil || got != nil {
		t.Fatalf("after SoftDeleteByIDs: err=%v got=%+v", err, got)
	}

	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{second.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if count, err := repo.CountByUserID(dbc, u.ID); err != nil || count != 0 {
		t.Fatalf("after deletes CountByUserID: err=%v count=%d", err, count)
	}
}
