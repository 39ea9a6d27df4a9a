package session

import "errors"

var (
	// ErrNotConfigured is returned when sessions are used without WithSession.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a stored session is past its expiry.
	ErrExpired = errors.New("session: expired")

	ErrTypeMismatch = errors.New("session: type mismatch")
)
