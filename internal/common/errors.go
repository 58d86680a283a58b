// Package common defines shared constants and sentinel errors used across
// the identity store, the session service and the transport layer. Callers
// should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// ErrorUnavailable wraps storage backend faults (connectivity, timeouts).
	ErrorUnavailable = errors.New("unavailable")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorUpdateFailed = errors.New("update failed")
	ErrorValidation   = errors.New("validation error")

	// ErrorInvalidCredential is the single error returned for every failed
	// login or refresh attempt, whatever the underlying cause.
	ErrorInvalidCredential = errors.New("invalid credentials, please log in again")
)
