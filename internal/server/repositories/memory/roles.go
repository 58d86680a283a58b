package memory

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Roles exposes the role side of a Store as a roles.Repository.
type Roles struct {
	s *Store
}

func (r Roles) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, role := range r.s.roles {
		if role.Name == name {
			out := copyRole(role)
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r Roles) GetByID(ctx context.Context, id string) (*models.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := copyRole(role)
	return &out, nil
}

func copyRole(r *models.Role) models.Role {
	out := *r
	out.Permissions = append([]string(nil), r.Permissions...)
	return out
}
