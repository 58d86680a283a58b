// Package users declares the persistence contract for user records and its
// PostgreSQL implementation. Every lookup sees active records only; soft
// deleted rows stay in the table for audit.
package users

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts u and fills in its timestamps. A duplicate active
	// email yields common.ErrorConflict.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	// InsertIfAbsent inserts u unless an active record already holds its
	// email. It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, u *models.User) (bool, error)

	// Count returns the number of records, soft deleted ones included.
	Count(ctx context.Context) (int64, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByRefreshToken matches the currently stored token only.
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// Update applies patch and stamps by as the updater. roleID replaces
	// the role reference when non-nil. It returns the affected row count.
	Update(ctx context.Context, patch *models.UserPatch, roleID *string, by models.Actor) (int64, error)

	// SoftDelete marks the record deleted by actor and clears its session.
	SoftDelete(ctx context.Context, id string, by models.Actor) (int64, error)

	// SetRefreshToken overwrites the stored token; "" clears the session.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// CompareAndSwapRefreshToken stores next only if the current token is
	// still expected. It reports whether the swap happened.
	CompareAndSwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error)
}
