package quota

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when the api does not know the handle or user id
var ErrUserNotFound = errors.New("user not found")

// APIError is a non-2xx response from the api.
// Err is set to a domain sentinel when the status maps to one.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}
