package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a violated unique
// constraint or index.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// WrapErr maps a driver error onto the common error kinds:
// no rows becomes common.ErrorNotFound, a unique violation becomes
// common.ErrorConflict and anything else is reported as
// common.ErrorUnavailable with the original error kept in the chain.
func WrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case IsUniqueViolation(err):
		return common.ErrorConflict
	default:
		return fmt.Errorf("%w: db error: %w", common.ErrorUnavailable, err)
	}
}
