package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromDBClassifiesDriverErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"pg foreign key", &pgconn.PgError{Code: PgErrForeignKeyViolation, Message: "fk"}, KindReference},
		{"pg unique", &pgconn.PgError{Code: PgErrUniqueViolation, Message: "dup"}, KindConflict},
		{"pg check", &pgconn.PgError{Code: PgErrCheckViolation, Message: "chk"}, KindValidation},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, KindReference},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, KindConflict},
		{"gorm translated fk", gorm.ErrForeignKeyViolated, KindReference},
		{"anything else", errors.New("disk on fire"), KindStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := FromDB(fmt.Errorf("wrapped: %w", tc.err), "save failed")
			assert.Equal(t, tc.want, KindOf(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFromDBKeepsClassifiedErrors(t *testing.T) {
	orig := Validation("quantity must be greater than zero")
	err := FromDB(orig, "ignored")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Same(t, orig, e)
	assert.Nil(t, FromDB(nil, "nothing"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(NotFound("item %d", 3)))
	assert.Equal(t, KindStorage, KindOf(errors.New("plain")))
	assert.Contains(t, NotFound("item %d", 3).Error(), "item 3")
}
