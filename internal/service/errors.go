// Package service provides the business logic for authentication, todos,
// the public feed, settings and direct messaging, delegating persistence
// to repository interfaces.
package service

import "errors"

// Sentinel errors mapped to HTTP status codes at the handler layer.
var (
	// ErrInvalid reports a request that failed validation.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports an operation on a record the caller does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrEmailTaken reports a registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrBadCredentials reports a failed login or an invalid session token.
	ErrBadCredentials = errors.New("bad credentials")
)
