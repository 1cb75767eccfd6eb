package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hammingai/hammingctl/internal/config"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/hammingai/hammingctl/internal/testrun"
)

// DefaultListLimit is the number of test runs returned by ListTestRuns if no limit is given.
const DefaultListLimit = 10

// createPaths are the endpoints that start a test run, by direction.
var createPaths = map[testrun.Direction]string{
	testrun.Outbound: "/api/rest/test-runs/test-outbound-agent",
	testrun.Inbound:  "/api/rest/test-runs/test-inbound-agent",
}

// listKeys are the names under which a wrapped test run list may be reported, in lookup order.
var listKeys = []string{"testRuns", "test_runs", "runs", "data", "items"}

// Hamming http client.
type Hamming struct {
	Client             *retryablehttp.Client
	URL                string
	APIKey             string
	Debug              bool
	// RequestRateLimiter throttles every attempt sent by Client.
	RequestRateLimiter *rate.Limiter
	// Clock is used by PollTestRun unless the poll options carry their own.
	Clock poll.Clock
}

// NewHamming creates a new client. The configuration is validated first, so that an incomplete configuration fails
// with a *config.ConfigurationError before any request is made.
func NewHamming(cfg config.Config) (*Hamming, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	client := NewRetryableClient(cfg.Timeout, cfg.MaxRetries)
	client.HTTPClient.Transport = &rateLimitedTransport{limiter: limiter, next: client.HTTPClient.Transport}

	return &Hamming{
		Client:             client,
		URL:                strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:             cfg.APIKey,
		Debug:              cfg.Debug,
		RequestRateLimiter: limiter,
	}, nil
}

// Do sends an authenticated request to path, which is relative to the base URL. A non-nil body is JSON encoded once
// and sent as is with every attempt. A successful response is decoded into out, unless out is nil.
func (c *Hamming) Do(ctx context.Context, method, path string, body, out interface{}) error {
	if !validMethods[method] {
		return fmt.Errorf("unsupported method %s", method)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = b
	}

	u := c.URL + path
	req, err := NewRetryableRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	if c.Debug {
		ev := log.Debug().Str("method", method).Str("url", u)
		if payload != nil {
			ev = ev.RawJSON("payload", payload)
		}
		ev.Msg("Request.")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: u, Err: err}
	}
	if resp == nil {
		return &TransportError{Method: method, URL: u, Err: ErrMaxRetriesExceeded}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: u, StatusCode: resp.StatusCode, Err: err}
	}

	if c.Debug {
		log.Debug().Str("method", method).Str("url", u).Int("status", resp.StatusCode).
			Str("body", string(b)).Msg("Response.")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Method: method, URL: u, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, u, err)
	}

	return nil
}

// CreateTestRun starts a new test run.
func (c *Hamming) CreateTestRun(ctx context.Context, dir testrun.Direction, opts testrun.CreateOptions) (testrun.TestRun, error) {
	path, ok := createPaths[dir]
	if !ok {
		return testrun.TestRun{}, fmt.Errorf(msg.InvalidDirection, dir)
	}

	opts.SetDefaults()

	var run testrun.TestRun
	if err := c.Do(ctx, http.MethodPost, path, opts.Payload(), &run); err != nil {
		return run, err
	}
	if run.ID == "" {
		return run, errors.New(msg.MissingRunIDInResponse)
	}

	return run, nil
}

// ReadStatus returns the current status of the test run.
func (c *Hamming) ReadStatus(ctx context.Context, id string) (testrun.TestRun, error) {
	if err := checkID(id); err != nil {
		return testrun.TestRun{}, err
	}

	var run testrun.TestRun
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/rest/test-runs/%s/status", url.PathEscape(id)), nil, &run); err != nil {
		return run, err
	}
	if run.ID == "" {
		run.ID = id
	}

	return run, nil
}

// ReadResults returns the detailed results of the test run.
func (c *Hamming) ReadResults(ctx context.Context, id string) (testrun.Results, error) {
	if err := checkID(id); err != nil {
		return testrun.Results{}, err
	}

	var res testrun.Results
	err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/rest/test-runs/%s/results", url.PathEscape(id)), nil, &res)

	return res, err
}

// ListTestRuns returns the most recent test runs of the given direction.
func (c *Hamming) ListTestRuns(ctx context.Context, dir testrun.Direction, limit int) ([]testrun.TestRun, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf(msg.InvalidDirection, dir)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var raw json.RawMessage
	path := fmt.Sprintf("/api/rest/%s/test-runs?limit=%d", dir, limit)
	if err := c.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	return decodeTestRuns(raw)
}

// PollTestRun reads the status of the test run until it reaches a terminal state, see poll.Until.
func (c *Hamming) PollTestRun(ctx context.Context, id string, opts poll.Options) (poll.Result[testrun.TestRun], error) {
	if err := checkID(id); err != nil {
		return poll.Result[testrun.TestRun]{}, err
	}
	if opts.Clock == nil {
		opts.Clock = c.Clock
	}

	var last string
	return poll.Until[testrun.TestRun](ctx, opts, func(ctx context.Context) (testrun.TestRun, bool, error) {
		run, err := c.ReadStatus(ctx, id)
		if err != nil {
			return run, false, err
		}

		if run.Status != last {
			log.Info().Str("runID", id).Str("status", run.Status).Msg("Test run status changed.")
			last = run.Status
		} else {
			log.Debug().Str("runID", id).Str("status", run.Status).Msg("Test run still in progress.")
		}

		return run, run.Done(), nil
	})
}

// DashboardURL returns the link to the test run in the web application.
func (c *Hamming) DashboardURL(id string) string {
	return fmt.Sprintf("%s/test-runs/%s", c.URL, url.PathEscape(id))
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New(msg.MissingTestRunID)
	}
	return nil
}

// decodeTestRuns accepts both a bare array of test runs and an object wrapping it, see listKeys.
func decodeTestRuns(b json.RawMessage) ([]testrun.TestRun, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var runs []testrun.TestRun
	if err := json.Unmarshal(b, &runs); err == nil {
		return runs, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected test run list: %w", err)
	}
	for _, k := range listKeys {
		if v, ok := wrapped[k]; ok {
			if err := json.Unmarshal(v, &runs); err != nil {
				return nil, fmt.Errorf("unexpected test run list: %w", err)
			}
			return runs, nil
		}
	}

	return nil, errors.New("unexpected test run list: no test runs found in response")
}
