// Package memory is an in-process implementation of the user and role
// repositories. It keeps the same visibility and compare-and-swap rules as
// the PostgreSQL repositories and is used for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// Store holds records guarded by one RWMutex. Records are copied in and out
// so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	users map[string]*models.User
	roles map[string]*models.Role
	now   func() time.Time
}

func NewStore(roles ...models.Role) *Store {
	s := &Store{
		users: make(map[string]*models.User),
		roles: make(map[string]*models.Role),
		now:   time.Now,
	}
	for _, r := range roles {
		role := r
		s.roles[role.ID] = &role
	}
	return s
}

// All returns copies of every record, soft deleted ones included, ordered
// by creation time and then id.
func (s *Store) All() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, s.copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeByEmail(u.Email) != nil {
		return nil, common.ErrorConflict
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	stored := *u
	stored.RefreshToken = ""
	stored.Deleted = nil
	if u.CreatedBy != nil {
		a := *u.CreatedBy
		stored.CreatedBy = &a
	}
	s.users[u.ID] = &stored
	return u, nil
}

func (s *Store) InsertIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	if _, err := s.Create(ctx, u); err != nil {
		if err == common.ErrorConflict {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.Email == email })
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.find(ctx, func(u *models.User) bool { return u.ID == id })
}

func (s *Store) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return s.find(ctx, func(u *models.User) bool { return u.RefreshToken == token })
}

func (s *Store) Update(ctx context.Context, patch *models.UserPatch, roleID *string, by models.Actor) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[patch.ID]
	if u == nil || u.IsDeleted() {
		return 0, nil
	}
	if patch.Email != nil && *patch.Email != u.Email {
		if other := s.activeByEmail(*patch.Email); other != nil {
			return 0, common.ErrorConflict
		}
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}
	if patch.Address != nil {
		u.Address = *patch.Address
	}
	if roleID != nil {
		u.Role = models.Role{ID: *roleID}
	}
	actor := by
	u.UpdatedBy = &actor
	u.UpdatedAt = s.now()
	return 1, nil
}

func (s *Store) SoftDelete(ctx context.Context, id string, by models.Actor) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	if u == nil || u.IsDeleted() {
		return 0, nil
	}
	u.Deleted = &models.Deletion{By: by, At: s.now()}
	u.RefreshToken = ""
	return 1, nil
}

func (s *Store) SetRefreshToken(ctx context.Context, userID, token string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u == nil || u.IsDeleted() {
		return common.ErrorNotFound
	}
	u.RefreshToken = token
	return nil
}

func (s *Store) CompareAndSwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	if expected == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u == nil || u.IsDeleted() || u.RefreshToken != expected {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (s *Store) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if !u.IsDeleted() && match(u) {
			out := s.copyUser(u)
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *Store) activeByEmail(email string) *models.User {
	for _, u := range s.users {
		if !u.IsDeleted() && u.Email == email {
			return u
		}
	}
	return nil
}

// copyUser returns a detached copy of u with its role resolved.
// s.mu must be held.
func (s *Store) copyUser(u *models.User) models.User {
	out := *u
	if out.CreatedBy != nil {
		a := *out.CreatedBy
		out.CreatedBy = &a
	}
	if out.UpdatedBy != nil {
		a := *out.UpdatedBy
		out.UpdatedBy = &a
	}
	if out.Deleted != nil {
		d := *out.Deleted
		out.Deleted = &d
	}
	if r, ok := s.roles[u.Role.ID]; ok {
		out.Role = copyRole(r)
	}
	return out
}
