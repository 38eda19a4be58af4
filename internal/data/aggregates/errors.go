package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/agencycrm-backend/internal/domain/aggregates"
)

// MapError maps infrastructure failures into coded errors. Coded errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domainagg.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.NewError(domainagg.CodeNotFound, op, "Not found.", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if IsUniqueViolation(err) {
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}

// IsUniqueViolation recognizes unique constraint failures from Postgres and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed")
}
