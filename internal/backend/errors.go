package backend

import (
	"errors"
	"net/http"
)

var (
	// ErrSessionExpired is wrapped by the *Error returned for any 401.
	ErrSessionExpired = errors.New("backend: session expired")
	// ErrCancelled is returned when the caller's context was cancelled
	// before a response arrived. It is never wrapped in *Error.
	ErrCancelled = errors.New("backend: request cancelled")
)

const (
	msgSessionExpired = "Your session has expired. Please login again."
	msgNetwork        = "Network error - no response received"
)

// Error is the single error shape returned by the backend client for
// anything other than cancellation. Status is 0 when no response was
// received.
type Error struct {
	Status  int
	Payload []byte
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsConflict reports a 409 from the backend.
func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict
}

// IsNetwork reports a failure where no response was received.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}
