package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/password"
	"github.com/google/uuid"
)

type seedAccount struct {
	name  string
	email string
	role  string
}

func (s *IdentityService) seedAccounts() []seedAccount {
	return []seedAccount{
		{name: "Eric", email: s.adminEmail, role: models.RoleAdmin},
		{name: "User", email: "user@gmail.com", role: models.RoleUser},
		{name: "User 1", email: "user1@gmail.com", role: models.RoleUser},
		{name: "User 2", email: "user2@gmail.com", role: models.RoleUser},
		{name: "User 3", email: "user3@gmail.com", role: models.RoleUser},
	}
}

// Seed populates an empty store with the bootstrap accounts, all sharing
// initPassword. A store holding any record, deleted ones included, is left
// alone. Concurrent seeders are gated by the active-email unique index, so
// no account is ever written twice. It returns the number of rows inserted.
func (s *IdentityService) Seed(ctx context.Context, initPassword string) (int, error) {
	if initPassword == "" {
		return 0, fmt.Errorf("%w: initial password is required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug(ctx, "store is not empty, skipping seed", "users", n)
		return 0, nil
	}

	hash, err := password.Hash(initPassword, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	roleIDs := map[string]string{}
	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		role, err := s.repomanager.Roles(s.db).GetByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("seed role %q: %w", name, err)
		}
		roleIDs[name] = role.ID
	}

	inserted := 0
	for _, a := range s.seedAccounts() {
		ok, err := repo.InsertIfAbsent(ctx, &models.User{
			ID:           uuid.NewString(),
			Name:         a.name,
			Email:        a.email,
			PasswordHash: hash,
			Role:         models.Role{ID: roleIDs[a.role]},
		})
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", a.email, err)
		}
		if ok {
			inserted++
		}
	}

	s.log.Info(ctx, "seeded bootstrap accounts", "inserted", inserted)
	return inserted, nil
}
