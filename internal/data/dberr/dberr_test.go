package dberr

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapClassifies(t *testing.T) {
	if Map("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if err := Map("op", gorm.ErrRecordNotFound); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record-not-found mapped to %v", err)
	}
	if err := Map("op", &pgconn.PgError{Code: "23505", Message: "dup"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("unique violation mapped to %v", err)
	}
	if err := Map("op", &pgconn.PgError{Code: "23503"}); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("fk violation mapped to %v", err)
	}
	if err := Map("op", context.Canceled); !errors.Is(err, ErrRetryable) {
		t.Fatalf("canceled mapped to %v", err)
	}
	// sqlite has no SQLSTATE; the message fallback has to catch it
	if err := Map("op", errors.New("UNIQUE constraint failed: user.email")); !errors.Is(err, ErrConflict) {
		t.Fatalf("sqlite unique message mapped to %v", err)
	}
}

func TestMapIdempotent(t *testing.T) {
	first := Map("op", gorm.ErrRecordNotFound)
	second := Map("again", first)
	if second != first {
		t.Fatalf("already-mapped error was rewrapped: %v", second)
	}
}
