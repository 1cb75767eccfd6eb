// Package poll repeatedly checks the state of a long-running remote operation until it reaches a terminal state,
// the deadline passes or the caller gives up.
package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Defaults used when Options leave the corresponding field unset.
const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 300 * time.Second
)

var (
	// ErrTimeout is matched by errors returned when the deadline passes and the policy is TimeoutFail.
	ErrTimeout = errors.New("polling deadline exceeded")
	// ErrAborted is matched by errors returned when the context is cancelled while polling.
	ErrAborted = errors.New("polling aborted")
)

// TimeoutError is returned when the operation did not reach a terminal state in time.
type TimeoutError struct {
	Timeout  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("did not reach a terminal state within %s (%d checks)", e.Timeout, e.Attempts)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Outcome describes how polling ended.
type Outcome int

const (
	// OutcomeDone means a terminal state was observed.
	OutcomeDone Outcome = iota
	// OutcomeTimedOut means the deadline passed first.
	OutcomeTimedOut
	// OutcomeAborted means the context was cancelled.
	OutcomeAborted
	// OutcomeFailed means a check returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// TimeoutPolicy decides what happens when the deadline passes.
type TimeoutPolicy int

const (
	// TimeoutFail returns a *TimeoutError.
	TimeoutFail TimeoutPolicy = iota
	// TimeoutAdvisory returns the last observation with OutcomeTimedOut and no error, leaving it to the caller to
	// check back later.
	TimeoutAdvisory
)

// TimeoutPolicies maps the textual representation of each policy, as used by flags and config files.
var TimeoutPolicies = map[string]TimeoutPolicy{
	"fail":     TimeoutFail,
	"advisory": TimeoutAdvisory,
}

func (p TimeoutPolicy) String() string {
	for k, v := range TimeoutPolicies {
		if v == p {
			return k
		}
	}
	return "unknown"
}

// ParseTimeoutPolicy converts s into a TimeoutPolicy.
func ParseTimeoutPolicy(s string) (TimeoutPolicy, error) {
	if p, ok := TimeoutPolicies[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return TimeoutFail, fmt.Errorf("unknown timeout policy '%s', must be one of 'fail', 'advisory'", s)
}

// Clock abstracts the passing of time.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first, and returns ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the current goroutine for d or until ctx is done.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configure a polling loop.
type Options struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnTimeout TimeoutPolicy
	Clock     Clock
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	return o
}

// Result is the final observation of a polling loop.
type Result[T any] struct {
	// Value is the last successfully observed value.
	Value    T
	Outcome  Outcome
	Attempts int
	Elapsed  time.Duration
}

// CheckFunc observes the operation once and reports whether it reached a terminal state.
type CheckFunc[T any] func(ctx context.Context) (value T, done bool, err error)

// Until calls check until it reports a terminal state. Between two checks it sleeps for the configured interval,
// and before every check it verifies that the deadline has not passed yet.
//
// An error from check ends the loop immediately; any retrying of the individual check is up to check itself.
func Until[T any](ctx context.Context, opts Options, check CheckFunc[T]) (Result[T], error) {
	opts = opts.withDefaults()
	clock := opts.Clock
	start := clock.Now()

	var res Result[T]
	for {
		res.Elapsed = clock.Now().Sub(start)
		if err := ctx.Err(); err != nil {
			res.Outcome = OutcomeAborted
			return res, fmt.Errorf("%w: %w", ErrAborted, err)
		}

		if res.Elapsed >= opts.Timeout {
			res.Outcome = OutcomeTimedOut
			if opts.OnTimeout == TimeoutAdvisory {
				return res, nil
			}
			return res, &TimeoutError{Timeout: opts.Timeout, Attempts: res.Attempts}
		}

		v, done, err := check(ctx)
		res.Attempts++
		if err != nil {
			if ctx.Err() != nil {
				res.Outcome = OutcomeAborted
				return res, fmt.Errorf("%w: %w", ErrAborted, err)
			}
			res.Outcome = OutcomeFailed
			return res, err
		}

		res.Value = v
		if done {
			res.Elapsed = clock.Now().Sub(start)
			res.Outcome = OutcomeDone
			return res, nil
		}

		if err := clock.Sleep(ctx, opts.Interval); err != nil {
			res.Elapsed = clock.Now().Sub(start)
			res.Outcome = OutcomeAborted
			return res, fmt.Errorf("%w: %w", ErrAborted, err)
		}
	}
}
