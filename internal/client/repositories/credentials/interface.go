// Package credentials persists the client's token pair per server address.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

type Repository interface {
	// Get returns (nil, nil) when nothing is stored for server.
	Get(ctx context.Context, server string) (*models.Credentials, error)
	Save(ctx context.Context, server string, c models.Credentials) error
	Delete(ctx context.Context, server string) error
}
