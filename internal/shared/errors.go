package shared

import "errors"

var (
	// ErrNotFound indicates the resource does not exist or belongs to
	// another user. Both cases map to the same outcome so the existence
	// of other users' records is never leaked.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a uniqueness conflict (email or username taken).
	ErrDuplicate = errors.New("already exists")
	// ErrUnauthorized indicates a missing or invalid access token.
	ErrUnauthorized = errors.New("unauthorized")
)
