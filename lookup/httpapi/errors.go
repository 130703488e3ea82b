package httpapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEndpointRequired is returned when a client is created without a base URL.
	ErrEndpointRequired = errors.New("endpoint required")

	// ErrServiceRequired is returned when a server is created without a service.
	ErrServiceRequired = errors.New("lookup service required")
)

// StatusError is a non-2xx response from the upstream.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Message)
}

// Temporary reports whether the request may succeed if retried.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}
