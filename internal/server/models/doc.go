// Package models holds the server-side domain records: users, roles and the
// audit and soft-delete marks attached to them.
package models
