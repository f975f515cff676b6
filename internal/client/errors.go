package client

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when the response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed dashboard response")

// HTTPStatusError is returned when the analytics server answers with a non-2xx status.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("analytics server returned %d", e.Code)
}

// NetworkError wraps transport failures: refused connections, DNS, timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "failed to reach analytics server: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message returns the short text shown in the status label for a fetch error.
func Message(err error) string {
	var statusErr *HTTPStatusError
	var netErr *NetworkError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP error! status: %d", statusErr.Code)
	case errors.Is(err, ErrMalformedResponse):
		return "invalid response from server"
	case errors.As(err, &netErr):
		return "network error"
	default:
		return err.Error()
	}
}
