// Package auth signs and verifies the HS256 tokens handed out by the
// session service. Access and refresh tokens share one claim shape; they
// differ in key, lifetime and the signed kind marker.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Identity is the user context signed into a token.
type Identity struct {
	UserID string         `json:"id"`
	Name   string         `json:"name"`
	Email  string         `json:"email"`
	Role   models.RoleRef `json:"role"`
}

// IdentityOf builds the token identity for u.
func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.Ref()}
}

// Claims is the full signed payload: registered claims plus the identity.
type Claims struct {
	jwt.RegisteredClaims
	Identity
	Kind string `json:"kind"`
}

// Signer mints and verifies tokens of one kind.
type Signer struct {
	kind     string
	secret   []byte
	issuer   string
	subject  string
	validity time.Duration
	now      func() time.Time
}

func NewSigner(kind string, secret []byte, issuer, subject string, validity time.Duration) *Signer {
	return &Signer{kind: kind, secret: secret, issuer: issuer, subject: subject, validity: validity, now: time.Now}
}

// Validity is the lifetime given to new tokens.
func (s *Signer) Validity() time.Duration {
	return s.validity
}

// Sign returns a signed token for id and its expiry. Every token gets a
// random ID, so two tokens for the same identity never coincide.
func (s *Signer) Sign(id Identity) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   s.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Identity: id,
		Kind:     s.kind,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the signature, the markers, the kind and the expiry of
// tokenString.
//
// When only the expiry check fails, Parse returns the claims together with
// ErrTokenExpired: the signature has been verified at that point, so the
// identity can be trusted for cleanup. Every other failure returns nil
// claims and ErrTokenInvalid.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithSubject(s.subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if onlyExpired(err) && claims.Kind == s.kind {
			return claims, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" || claims.Kind != s.kind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func onlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	for _, other := range []error{
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenInvalidSubject,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenNotValidYet,
	} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}
