package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
)

// Classify maps driver and ORM failures onto ingestion error codes. Duplicate
// keys are recoverable; everything unrecognized is a storage failure.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ingErr *ingesterr.Error
	if errors.As(err, &ingErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ingesterr.Wrap(ingesterr.CodeDuplicate, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ingesterr.Wrap(ingesterr.CodeInvariantViolation, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ingesterr.Wrap(ingesterr.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ingesterr.Wrap(ingesterr.CodeStorage, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return ingesterr.Wrap(ingesterr.CodeDuplicate, op, err) // unique_violation
		case "23503", "23514":
			return ingesterr.Wrap(ingesterr.CodeInvariantViolation, op, err) // foreign_key / check
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return ingesterr.Wrap(ingesterr.CodeDuplicate, op, err)
	case strings.Contains(msg, "foreign key constraint failed"), strings.Contains(msg, "check constraint failed"):
		return ingesterr.Wrap(ingesterr.CodeInvariantViolation, op, err)
	default:
		return ingesterr.Wrap(ingesterr.CodeStorage, op, err)
	}
}

// IsDuplicate reports whether err is a recoverable duplicate-key failure.
func IsDuplicate(err error) bool {
	return ingesterr.IsCode(Classify("", err), ingesterr.CodeDuplicate)
}
