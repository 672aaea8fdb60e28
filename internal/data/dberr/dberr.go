// Package dberr classifies storage failures into sentinel errors so
// services branch on errors.Is instead of postgres SQLSTATE codes.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
	ErrRetryable    = errors.New("retryable storage failure")
)

// Map wraps err with the matching sentinel. Already-mapped errors pass
// through unchanged.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrPrecondition),
		errors.Is(err, ErrRetryable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrap(op, ErrNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrap(op, ErrRetryable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return wrap(op, ErrConflict, err)
		case "23503": // foreign_key_violation
			return wrap(op, ErrPrecondition, err)
		case "40001", "40P01", "55P03": // serialization, deadlock, lock_not_available
			return wrap(op, ErrRetryable, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"),
		strings.Contains(msg, "unique constraint"):
		return wrap(op, ErrConflict, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return wrap(op, ErrRetryable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrap(op string, sentinel, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(sentinel, err))
}
