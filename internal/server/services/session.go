package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
)

// IdentityStore is what SessionService needs from the identity side.
// *IdentityService implements it.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(candidate, hash string) bool
	SetRefreshToken(ctx context.Context, userID, token string) error
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	CompareAndSwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error)
}

// Session is an issued credential pair with the profile it belongs to.
type Session struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             models.PublicProfile
}

// SessionService issues, verifies, rotates and revokes credential pairs.
// It never compares passwords itself.
type SessionService struct {
	identity IdentityStore
	access   *auth.Signer
	refresh  *auth.Signer
	log      logging.Logger
}

func NewSessionService(identity IdentityStore, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{
		identity: identity,
		access:   auth.NewSigner(auth.KindAccess, []byte(cfg.AccessTokenSecret), cfg.TokenIssuer, cfg.TokenSubject, cfg.AccessTokenValidityDuration),
		refresh:  auth.NewSigner(auth.KindRefresh, []byte(cfg.RefreshTokenSecret), cfg.TokenIssuer, cfg.TokenSubject, cfg.RefreshTokenValidityDuration),
		log:      log.With("module", "session"),
	}
}

// Authenticate returns the user for a matching username and password, or nil
// when either is wrong. Unknown users and wrong passwords both cost one
// bcrypt comparison.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.identity.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.identity.VerifyPassword(password, "")
			return nil, nil
		}
		return nil, err
	}
	if !s.identity.VerifyPassword(password, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

// Login authenticates and opens a session. Any credential mismatch yields
// common.ErrorInvalidCredential.
func (s *SessionService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Warn(ctx, "login rejected", "reason", "bad credentials")
		return nil, common.ErrorInvalidCredential
	}
	return s.IssueSession(ctx, u)
}

// IssueSession mints a fresh pair for u and makes its refresh token the
// only live one.
func (s *SessionService) IssueSession(ctx context.Context, u *models.User) (*Session, error) {
	sess, err := s.mint(u)
	if err != nil {
		return nil, err
	}
	if err := s.identity.SetRefreshToken(ctx, u.ID, sess.RefreshToken); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "session issued", "user_id", u.ID)
	return sess, nil
}

// RenewSession exchanges the presented refresh token for a new pair. The
// presented token is single use: rotation succeeds only if it is still the
// stored value at the moment of the swap. Every credential failure is
// reported as common.ErrorInvalidCredential; the reason is only logged.
func (s *SessionService) RenewSession(ctx context.Context, presented string) (*Session, error) {
	claims, err := s.refresh.Parse(presented)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) && claims != nil {
			s.reject(ctx, "expired", claims.UserID)
			if _, cerr := s.identity.CompareAndSwapRefreshToken(ctx, claims.UserID, presented, ""); cerr != nil {
				s.log.Warn(ctx, "clearing expired refresh token failed", "user_id", claims.UserID, "error", cerr)
			}
			return nil, common.ErrorInvalidCredential
		}
		s.reject(ctx, "invalid token", "")
		return nil, common.ErrorInvalidCredential
	}

	u, err := s.identity.FindByRefreshToken(ctx, presented)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.reject(ctx, "not current", claims.UserID)
			return nil, common.ErrorInvalidCredential
		}
		return nil, err
	}
	if u.ID != claims.UserID {
		s.reject(ctx, "owner mismatch", claims.UserID)
		return nil, common.ErrorInvalidCredential
	}

	sess, err := s.mint(u)
	if err != nil {
		return nil, err
	}
	swapped, err := s.identity.CompareAndSwapRefreshToken(ctx, u.ID, presented, sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		s.reject(ctx, "lost rotation race", u.ID)
		return nil, common.ErrorInvalidCredential
	}

	s.log.Info(ctx, "session renewed", "user_id", u.ID)
	return sess, nil
}

// RevokeSession clears the stored refresh token of userID. Revoking an
// absent session, or the session of an unknown user, succeeds.
func (s *SessionService) RevokeSession(ctx context.Context, userID string) error {
	if err := s.identity.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	s.log.Info(ctx, "session revoked", "user_id", userID)
	return nil
}

// VerifyAccessToken checks an access token and returns its claims.
func (s *SessionService) VerifyAccessToken(token string) (*auth.Claims, error) {
	claims, err := s.access.Parse(token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return claims, nil
}

func (s *SessionService) mint(u *models.User) (*Session, error) {
	id := auth.IdentityOf(u)

	access, _, err := s.access.Sign(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, expires, err := s.refresh.Sign(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &Session{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expires,
		User:             u.Public(),
	}, nil
}

func (s *SessionService) reject(ctx context.Context, reason, userID string) {
	s.log.Warn(ctx, "refresh rejected", "reason", reason, "user_id", userID)
}
