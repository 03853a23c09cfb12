// Package common contains shared helpers and sentinel errors used across
// client and server components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// ErrInvalidToken marks an invalid, malformed or expired session token.
	ErrInvalidToken = errors.New("invalid token")
)
