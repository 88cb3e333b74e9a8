package shared

import "errors"

var (
	// ErrSessionNotFound indicates a missing, expired or revoked token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActor indicates a request reached a handler without authentication.
	ErrNoActor = errors.New("no authenticated actor")
)
