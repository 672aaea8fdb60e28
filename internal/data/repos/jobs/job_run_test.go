package jobs

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

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.WithTx(context.Background(), tx)
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	ownerUserID := uuid.New()

	queued := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeCalendarAnalysis,
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    ptrUUID(uuid.New()),
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-3 * time.Hour),
		UpdatedAt:   now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeCalendarAnalysis,
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    ptrUUID(uuid.New()),
		Status:      types.JobStatusFailed,
		Stage:       "failed",
		Attempts:    0,
		LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeCalendarAnalysis,
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    ptrUUID(uuid.New()),
		Status:      types.JobStatusRunning,
		Stage:       "running",
		Attempts:    0,
		HeartbeatAt: ptrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	if rows, err := repo.GetByOwner(dbc, ownerUserID, 2); err != nil || len(rows) != 2 {
		t.Fatalf("GetByOwner: err=%v len=%d", err, len(rows))
	}

	// GetLatestByEntity
	entityID := uuid.New()
	older := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     "reanalyze",
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    &entityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-5 * time.Hour),
		UpdatedAt:   now.Add(-5 * time.Hour),
	}
	newer := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     "reanalyze",
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    &entityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-4 * time.Hour),
		UpdatedAt:   now.Add(-4 * time.Hour),
	}
	if _, err := repo.Create(dbc, []*types.JobRun{older, newer}); err != nil {
		t.Fatalf("seed latest: %v", err)
	}
	latest, err := repo.GetLatestByEntity(dbc, ownerUserID, types.EntityTypeContentCalendar, entityID, "reanalyze")
	if err != nil {
		t.Fatalf("GetLatestByEntity: %v", err)
	}
	if latest == nil || latest.ID != newer.ID {
		t.Fatalf("GetLatestByEntity: expected %v got %v", newer.ID, latest)
	}

	// ClaimNextRunnable walks the runnable set in created_at ASC order. The
	// reanalyze pair seeded above is older than everything else, so it is
	// claimed first.
	claimIDs := []uuid.UUID{}
	for i := 0; i < 5; i++ {
		claim, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if claim == nil {
			break
		}
		if claim.Status != types.JobStatusRunning {
			t.Fatalf("ClaimNextRunnable #%d: status %q, want running", i+1, claim.Status)
		}
		if claim.Attempts < 1 {
			t.Fatalf("ClaimNextRunnable #%d: attempts %d not incremented", i+1, claim.Attempts)
		}
		claimIDs = append(claimIDs, claim.ID)
	}
	wantOrder := []uuid.UUID{older.ID, newer.ID, queued.ID, failed.ID, staleRunning.ID}
	if len(claimIDs) != len(wantOrder) {
		t.Fatalf("ClaimNextRunnable: claimed %d jobs, want %d", len(claimIDs), len(wantOrder))
	}
	for i := range wantOrder {
		if claimIDs[i] != wantOrder[i] {
			t.Fatalf("ClaimNextRunnable order[%d]: got %v want %v", i, claimIDs[i], wantOrder[i])
		}
	}
	if extra, err := repo.ClaimNextRunnable(dbc, 3, 1*time.Hour, 1*time.Hour); err != nil || extra != nil {
		t.Fatalf("ClaimNextRunnable drained: err=%v extra=%v", err, extra)
	}

	// UpdateFields
	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": types.JobStatusFailed, "stage": "error"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	// UpdateFieldsUnlessStatus refuses to touch a canceled job.
	if err := repo.UpdateFields(dbc, failed.ID, map[string]interface{}{"status": types.JobStatusCanceled}); err != nil {
		t.Fatalf("cancel seed: %v", err)
	}
	ok, err := repo.UpdateFieldsUnlessStatus(dbc, failed.ID, []string{types.JobStatusCanceled}, map[string]interface{}{"status": types.JobStatusSucceeded})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus: %v", err)
	}
	if ok {
		t.Fatalf("UpdateFieldsUnlessStatus: updated a canceled job")
	}
	ok, err = repo.UpdateFieldsUnlessStatus(dbc, staleRunning.ID, []string{types.JobStatusCanceled}, map[string]interface{}{"stage": "analyzing"})
	if err != nil {
		t.Fatalf("UpdateFieldsUnlessStatus (allowed): %v", err)
	}
	if !ok {
		t.Fatalf("UpdateFieldsUnlessStatus (allowed): expected update")
	}

	// Heartbeat only touches running jobs.
	if err := repo.Heartbeat(dbc, staleRunning.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	// HasRunnableForEntity
	rEntityID := uuid.New()
	runnable := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     types.JobTypeCalendarAnalysis,
		EntityType:  types.EntityTypeContentCalendar,
		EntityID:    &rEntityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
	}
	if _, err := repo.Create(dbc, []*types.JobRun{runnable}); err != nil {
		t.Fatalf("seed runnable: %v", err)
	}

	has, err := repo.HasRunnableForEntity(dbc, ownerUserID, types.EntityTypeContentCalendar, rEntityID, types.JobTypeCalendarAnalysis)
	if err != nil {
		t.Fatalf("HasRunnableForEntity: %v", err)
	}
	if !has {
		t.Fatalf("HasRunnableForEntity: expected true")
	}

	has, err = repo.HasRunnableForEntity(dbc, ownerUserID, types.EntityTypeContentCalendar, rEntityID, "other")
	if err != nil {
		t.Fatalf("HasRunnableForEntity (other): %v", err)
	}
	if has {
		t.Fatalf("HasRunnableForEntity (other): expected false")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrUUID(u uuid.UUID) *uuid.UUID { return &u }
