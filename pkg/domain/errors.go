package domain

import "errors"

var (
	// ErrQuotaExceeded is a backpressure signal, the call was not attempted
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrNotConfigured means credentials or configuration for a platform are missing
	ErrNotConfigured = errors.New("platform not configured")
	// ErrUnauthorized means the remote api rejected the configured credentials
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadyExists is returned when adding a source that is already tracked
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned by a manual refresh while the platform job is in flight
	ErrBusy = errors.New("poll in progress")
)
