package http

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/hammingai/hammingctl/internal/version"
)

// NewRetryableRequestWithContext is a wrapper around retryablehttp.NewRequestWithContext that modifies the request by
// adding additional headers. The body is buffered once and replayed as is on every attempt.
func NewRetryableRequestWithContext(ctx context.Context, method, url string, body []byte) (*retryablehttp.Request, error) {
	var rawBody interface{}
	if body != nil {
		rawBody = body
	}
	r, err := retryablehttp.NewRequestWithContext(ctx, method, url, rawBody)
	if err != nil {
		return r, err
	}
	r.Header.Set("User-Agent", version.UserAgent())
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")

	return r, err
}

// validMethods are the verbs the service understands.
var validMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}
