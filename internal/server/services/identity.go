// Package services contains server-side business logic. IdentityService is
// the sole authority over user records and password hashes; SessionService
// turns verified identities into signed credentials and rotates them.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/password"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// IdentityService owns user records: lookups, registration, administrative
// mutations and the stored refresh-token reference.
type IdentityService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	adminEmail  string
	bcryptCost  int
	log         logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewIdentityService wires the service to a DB handle for single statements
// and a Transactor for multi-statement mutations.
func NewIdentityService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *IdentityService {
	return &IdentityService{
		db:          db,
		tx:          tx,
		repomanager: m,
		adminEmail:  normalizeEmail(cfg.AdminEmail),
		bcryptCost:  cfg.BcryptCost,
		log:         log.With("module", "identity"),
	}
}

// FindByUsername returns the active user whose email is username, with its
// role resolved. Absent users yield common.ErrorNotFound.
func (s *IdentityService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(username))
}

// FindByID returns the active user with id. Ids that are not UUIDs are
// reported as common.ErrorNotFound without touching the store.
func (s *IdentityService) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// VerifyPassword compares candidate with hash. An empty hash is compared
// against a dummy one so that both outcomes cost one bcrypt comparison.
func (s *IdentityService) VerifyPassword(candidate, hash string) bool {
	if hash == "" {
		password.Verify(candidate, s.dummy())
		return false
	}
	return password.Verify(candidate, hash)
}

// Register creates a self-service account with the baseline role.
func (s *IdentityService) Register(ctx context.Context, p models.Profile) (*models.User, error) {
	p.Role = models.RoleUser
	u, err := s.create(ctx, p, nil)
	if errors.Is(err, common.ErrorNotFound) {
		// The baseline role is part of the schema; losing it is not a caller error.
		return nil, fmt.Errorf("%w: baseline role missing", common.ErrorInternal)
	}
	return u, err
}

// Create is the administrative variant of Register: the role is resolved by
// name and the acting user is stamped as creator.
func (s *IdentityService) Create(ctx context.Context, p models.Profile, by models.Actor) (*models.User, error) {
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	return s.create(ctx, p, &by)
}

func (s *IdentityService) create(ctx context.Context, p models.Profile, by *models.Actor) (*models.User, error) {
	p.Email = normalizeEmail(p.Email)
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	role, err := s.repomanager.Roles(s.db).GetByName(ctx, p.Role)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("role %q: %w", p.Role, common.ErrorNotFound)
		}
		return nil, err
	}

	hash, err := password.Hash(p.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(p.Name),
		Email:        p.Email,
		PasswordHash: hash,
		Age:          p.Age,
		Address:      p.Address,
		Role:         *role,
		CreatedBy:    by,
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, u)
	if err != nil {
		if !errors.Is(err, common.ErrorConflict) {
			s.log.Error(ctx, "create user failed", "error", err)
		}
		return nil, err
	}

	s.log.Info(ctx, "user created", "user_id", created.ID, "role", role.Name)
	created.PasswordHash = ""
	return created, nil
}

// Update applies patch and returns the refreshed record without its hash.
// A patch that addresses no active record yields common.ErrorUpdateFailed.
// The protected account keeps its email: changing it is common.ErrorForbidden.
func (s *IdentityService) Update(ctx context.Context, patch models.UserPatch, by models.Actor) (*models.User, error) {
	if !validID(patch.ID) {
		return nil, common.ErrorNotFound
	}
	if patch.Email != nil {
		e := normalizeEmail(*patch.Email)
		if e == "" {
			return nil, fmt.Errorf("%w: email must not be empty", common.ErrorValidation)
		}
		patch.Email = &e
	}
	if patch.Age != nil && *patch.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", common.ErrorValidation)
	}

	var updated *models.User
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var roleID *string
		if patch.Role != nil {
			role, err := s.repomanager.Roles(tx).GetByName(ctx, *patch.Role)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return fmt.Errorf("role %q: %w", *patch.Role, common.ErrorNotFound)
				}
				return err
			}
			roleID = &role.ID
		}

		repo := s.repomanager.Users(tx)
		if patch.Email != nil {
			current, err := repo.GetByID(ctx, patch.ID)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return common.ErrorUpdateFailed
				}
				return err
			}
			if current.Email == s.adminEmail && *patch.Email != s.adminEmail {
				return fmt.Errorf("%w: bootstrap account email is fixed", common.ErrorForbidden)
			}
		}

		n, err := repo.Update(ctx, &patch, roleID, by)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrorUpdateFailed
		}

		updated, err = repo.GetByID(ctx, patch.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	updated.PasswordHash = ""
	return updated, nil
}

// SoftDelete marks the user deleted by actor. The protected administrator
// account can never be deleted.
func (s *IdentityService) SoftDelete(ctx context.Context, id string, by models.Actor) error {
	if !validID(id) {
		return common.ErrorNotFound
	}

	return s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Email == s.adminEmail {
			s.log.Warn(ctx, "attempt to delete protected account", "actor_id", by.ID)
			return common.ErrorForbidden
		}

		n, err := repo.SoftDelete(ctx, id, by)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrorNotFound
		}
		s.log.Info(ctx, "user deleted", "user_id", id, "actor_id", by.ID)
		return nil
	})
}

// SetRefreshToken overwrites the stored refresh token; "" ends the session.
func (s *IdentityService) SetRefreshToken(ctx context.Context, userID, token string) error {
	if !validID(userID) {
		return common.ErrorNotFound
	}
	return s.repomanager.Users(s.db).SetRefreshToken(ctx, userID, token)
}

// FindByRefreshToken resolves the active user currently holding token.
func (s *IdentityService) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByRefreshToken(ctx, token)
}

// CompareAndSwapRefreshToken replaces expected with next if expected is
// still the stored value.
func (s *IdentityService) CompareAndSwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	return s.repomanager.Users(s.db).CompareAndSwapRefreshToken(ctx, userID, expected, next)
}

func (s *IdentityService) dummy() string {
	s.dummyOnce.Do(func() {
		rnd, err := common.MakeRandHexString(16)
		if err != nil {
			rnd = "dummy-password"
		}
		h, err := password.Hash(rnd, s.bcryptCost)
		if err != nil {
			s.log.Error(context.Background(), "dummy hash failed", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func validateProfile(p models.Profile) error {
	if p.Email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if p.Password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", common.ErrorValidation)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
