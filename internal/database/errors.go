package database

import (
	"errors"
	"strings"

	"warbler/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// IsConstraintViolation reports whether err came from a unique, not-null,
// check, or foreign-key constraint.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// SQLSTATE class 23 is "integrity constraint violation".
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed") ||
		strings.Contains(msg, "violates") && strings.Contains(msg, "constraint")
}

// TranslateError maps a gorm error onto the models error taxonomy.
// AppErrors pass through untouched and ErrRecordNotFound is left for callers.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if IsConstraintViolation(err) {
		return models.NewIntegrityError(err)
	}
	return models.NewInternalError(err)
}
