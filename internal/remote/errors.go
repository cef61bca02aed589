package remote

import (
	"errors"
	"fmt"
)

// ErrNetwork wraps transport failures: the request never produced a response.
var ErrNetwork = errors.New("network error")

// ErrNoToken is returned when a successful sign-in carries no token.
var ErrNoToken = errors.New("signin response without token")

// APIError is a non-2xx answer from the task service.
type APIError struct {
	StatusCode int
	Message    string // server "error" field, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service responded %d", e.StatusCode)
	}
	return fmt.Sprintf("task service responded %d: %s", e.StatusCode, e.Message)
}

// Message returns the server-provided message carried by err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
