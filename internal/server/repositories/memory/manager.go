package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
)

// Default role ids, matching the seed rows of the SQL migration.
const (
	AdminRoleID = "6f1c7a52-2b8e-4a52-9c1e-3d2f5b7a9001"
	UserRoleID  = "6f1c7a52-2b8e-4a52-9c1e-3d2f5b7a9002"
)

// DefaultRoles mirrors the roles created by the migrations.
func DefaultRoles() []models.Role {
	return []models.Role{
		{ID: AdminRoleID, Name: models.RoleAdmin, Permissions: []string{"users:read", "users:create", "users:update", "users:delete"}},
		{ID: UserRoleID, Name: models.RoleUser, Permissions: []string{"users:read"}},
	}
}

// InMemoryRepositoryManager hands out the same Store whatever handle it is
// given. It is also a dbx.Transactor that serializes units of work.
type InMemoryRepositoryManager struct {
	store *Store
	txMu  sync.Mutex
}

func NewInMemoryRepositoryManager(store *Store) *InMemoryRepositoryManager {
	if store == nil {
		store = NewStore(DefaultRoles()...)
	}
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) Store() *Store {
	return m.store
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store
}

func (m *InMemoryRepositoryManager) Roles(dbx.DBTX) roles.Repository {
	return Roles{s: m.store}
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
}
