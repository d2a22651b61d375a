package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Every error returned by LibraryService for a rejected
// request wraps exactly one of these; storage failures wrap none.
var (
	// ErrValidation marks empty or malformed input.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate marks a uniqueness violation on a name or phone number.
	ErrDuplicate = errors.New("duplicate error")

	// ErrNotFound marks an id or key that does not resolve to a row.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a request that would break a loan invariant.
	ErrConflict = errors.New("conflict")
)

// Error is a rejected operation with a message meant for the person at the menu.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *Error {
	return newError(ErrValidation, format, args...)
}

func duplicateError(format string, args ...interface{}) *Error {
	return newError(ErrDuplicate, format, args...)
}

func notFoundError(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

func conflictError(format string, args ...interface{}) *Error {
	return newError(ErrConflict, format, args...)
}

// IsKind reports whether err was classified as one of the error kinds.
func IsKind(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}

// isUniqueViolation checks whether the store rejected a row on a unique index.
// PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
