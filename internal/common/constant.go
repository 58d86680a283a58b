package common

// Metadata keys used by the gRPC transport and client.
const (
	// AccessTokenHeaderName carries the access token on inbound requests.
	AccessTokenHeaderName = "access_token"

	// RefreshTokenHeaderName carries the refresh token out-of-band, in both
	// directions, the way a browser would carry an HTTP-only cookie.
	RefreshTokenHeaderName = "refresh_token"

	// RefreshTokenExpiresHeaderName holds the refresh token expiry in unix seconds.
	RefreshTokenExpiresHeaderName = "refresh_token_expires"
)
