package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapErr(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no rows", in: sql.ErrNoRows, want: common.ErrorNotFound},
		{name: "wrapped no rows", in: fmt.Errorf("scan: %w", sql.ErrNoRows), want: common.ErrorNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505"}, want: common.ErrorConflict},
		{name: "other pg error", in: &pgconn.PgError{Code: "40001"}, want: common.ErrorUnavailable},
		{name: "deadline", in: context.DeadlineExceeded, want: common.ErrorUnavailable},
		{name: "generic", in: boom, want: common.ErrorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapErr(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestWrapErr_KeepsCause(t *testing.T) {
	boom := errors.New("db down")
	err := WrapErr(boom)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}
