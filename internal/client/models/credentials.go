// Package models holds client-side data types.
package models

import "time"

// Credentials is the token pair the client holds for one server.
type Credentials struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Empty reports whether no session is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// RefreshExpired reports whether the refresh token is known to be stale at
// now. A zero expiry is treated as unknown, not expired.
func (c Credentials) RefreshExpired(now time.Time) bool {
	return !c.RefreshExpiresAt.IsZero() && !now.Before(c.RefreshExpiresAt)
}
