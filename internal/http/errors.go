package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hammingai/hammingctl/internal/msg"
)

var (
	// ErrMaxRetriesExceeded is returned when every attempt failed but neither a response nor an error is left to
	// report.
	ErrMaxRetriesExceeded = errors.New(msg.MaxRetriesExceeded)
)

// TransportError is returned when a request failed for good, i.e. after all retries. Either Err is set (network
// failure, timeout, cancellation) or StatusCode and Body describe the last non-2xx response.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return fmt.Sprintf("%s %s failed: %s; unexpected response code:'%d', msg:'%v'",
			e.Method, e.URL, msg.InternalServerError, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s failed; unexpected response code:'%d', msg:'%v'", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is a TransportError caused by a 404 response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized returns true if err is a TransportError caused by the service rejecting the API key.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, code int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == code
}
