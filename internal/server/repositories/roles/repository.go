// Package roles resolves role references for the identity store.
package roles

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Repository resolves a role by name or id. Missing roles yield
// common.ErrorNotFound.
type Repository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	GetByID(ctx context.Context, id string) (*models.Role, error)
}
