package http

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"github.com/xtgo/uuid"
	"golang.org/x/time/rate"

	"github.com/hammingai/hammingctl/internal/logger"
)

// Retry timing.
const (
	RetryWaitMin = 1 * time.Second
	RetryWaitMax = 30 * time.Second
)

// NewRetryableClient returns a new pre-configured instance of retryablehttp.Client. Every request is attempted at
// most maxRetries+1 times, each attempt limited by timeout.
func NewRetryableClient(timeout time.Duration, maxRetries int) *retryablehttp.Client {
	return &retryablehttp.Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		Logger:         &logger.Logger{},
		RetryWaitMin:   RetryWaitMin,
		RetryWaitMax:   RetryWaitMax,
		RetryMax:       maxRetries,
		RequestLogHook: beforeAttempt,
		CheckRetry:     RetryPolicy,
		Backoff:        Backoff,
		ErrorHandler:   retryablehttp.PassthroughErrorHandler,
	}
}

// RetryPolicy retries every network error, every per-attempt timeout and every non-2xx response. Only the
// cancellation of ctx stops the retries early.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return true, nil
	}

	return false, nil
}

// Backoff waits 2^attemptNum * min before the next attempt, i.e. 1s, 2s, 4s, ..., capped at max. Unlike
// retryablehttp.DefaultBackoff, Retry-After headers are not honoured.
func Backoff(min, max time.Duration, attemptNum int, _ *http.Response) time.Duration {
	mult := math.Pow(2, float64(attemptNum)) * float64(min)
	wait := time.Duration(mult)
	if float64(wait) != mult || wait > max {
		wait = max
	}
	return wait
}

// beforeAttempt tags every attempt with a fresh request id, so that retries can be told apart in the service logs.
func beforeAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	req.Header.Set("X-Request-Id", uuid.NewRandom().String())
	log.Debug().Str("method", req.Method).Str("url", req.URL.String()).
		Str("requestId", req.Header.Get("X-Request-Id")).Int("attempt", attempt+1).Msg("Sending request.")
}

// rateLimitedTransport waits for the limiter before every attempt, retries included.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
