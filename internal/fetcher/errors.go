package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrDecode is returned when a Content-Encoding cannot be decoded.
	ErrDecode = errors.New("failed to decode response body")
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}
