package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates input refused before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidStatus indicates a refused workflow transition.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrDuplicate indicates a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPersistence indicates the snapshot store failed to load or save.
	// Kept distinct so a lost write is never reported as success.
	ErrPersistence = errors.New("persistence failure")
)
