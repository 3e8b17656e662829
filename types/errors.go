package types

import "errors"

var (
	// ErrNotFound is returned when a document or user is absent
	ErrNotFound = errors.New("not found")

	// ErrBadRequest is returned on missing or malformed required fields
	ErrBadRequest = errors.New("bad request")

	// ErrConflict is returned when the resource conflicts (e.g. update of old revision)
	ErrConflict = errors.New("conflict")

	// ErrIndexOutOfRange is returned when a positional delete is out of list bounds
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUpstream wraps document store or third party API failures
	ErrUpstream = errors.New("upstream failure")

	// ErrInvalidCredentials is returned on failed sign in
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthorized is returned when the caller may not touch the resource
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInternal (for unhandled exceptions)
	ErrInternal = errors.New("internal error")
)
