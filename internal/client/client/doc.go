// Package client contains client-side building blocks for sessionkeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface).
//  2. A concrete gRPC implementation (see GRPCClient) that injects the
//     access token via an interceptor, renews the session once when a
//     protected call is rejected as unauthenticated, and maps gRPC status
//     codes to sentinel errors.
//  3. Token persistence (TokenStore) backed by a local SQLite database
//     (InitDatabase, RunMigrations) or by memory.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrAlreadyExists, ErrInvalidInput, ErrNotLoggedIn.
package client
