// Package apperr is the failure taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindReference   Kind = "REFERENCE"
	KindConflict    Kind = "CONFLICT"
	KindUnsupported Kind = "UNSUPPORTED"
	KindStorage     Kind = "STORAGE"
)

// PostgreSQL integrity error codes
const (
	PgErrForeignKeyViolation = "23503"
	PgErrUniqueViolation     = "23505"
	PgErrCheckViolation      = "23514"
	PgErrNotNullViolation    = "23502"
)

// Error is the structured failure every service operation returns.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Reference(format string, args ...any) *Error {
	return &Error{Kind: KindReference, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unsupported(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an unclassified storage failure.
func Storage(err error, message string) *Error {
	return &Error{Kind: KindStorage, Message: message, Detail: err.Error(), Err: err}
}

// KindOf reports the kind of err, STORAGE for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// FromDB classifies an error coming back from gorm. Errors that are already
// classified pass through untouched; driver errors stay reachable via Unwrap.
func FromDB(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: message, Detail: "record not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Kind: pgKind(pgErr.Code), Message: message, Detail: pgDetail(pgErr), Err: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &Error{Kind: sqliteKind(liteErr), Message: message, Detail: liteErr.Error(), Err: err}
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindReference, Message: message, Detail: err.Error(), Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: message, Detail: err.Error(), Err: err}
	}
	return Storage(err, message)
}

func pgKind(code string) Kind {
	switch code {
	case PgErrForeignKeyViolation:
		return KindReference
	case PgErrUniqueViolation:
		return KindConflict
	case PgErrCheckViolation, PgErrNotNullViolation:
		return KindValidation
	}
	return KindStorage
}

func pgDetail(pgErr *pgconn.PgError) string {
	if pgErr.Detail != "" {
		return pgErr.Code + " " + pgErr.Message + ": " + pgErr.Detail
	}
	return pgErr.Code + " " + pgErr.Message
}

func sqliteKind(e sqlite3.Error) Kind {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return KindReference
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return KindConflict
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
		return KindValidation
	}
	return KindStorage
}
