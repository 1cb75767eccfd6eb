package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammingai/hammingctl/internal/mocks"
	"github.com/hammingai/hammingctl/internal/poll"
	"github.com/stretchr/testify/assert"
)

// scripted returns a poll.CheckFunc that replays statuses in order and repeats the last one once exhausted.
func scripted(statuses ...string) (poll.CheckFunc[string], *int) {
	calls := 0
	return func(_ context.Context) (string, bool, error) {
		s := statuses[len(statuses)-1]
		if calls < len(statuses) {
			s = statuses[calls]
		}
		calls++
		return s, s == "completed" || s == "failed" || s == "cancelled", nil
	}, &calls
}

func TestUntil_ReachesTerminalState(t *testing.T) {
	clock := mocks.NewFakeClock()
	check, calls := scripted("pending", "in_progress", "in_progress", "completed")

	res, err := poll.Until(context.Background(), poll.Options{Interval: 5 * time.Second, Timeout: time.Minute, Clock: clock}, check)

	assert.NoError(t, err)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, "completed", res.Value)
	assert.Equal(t, poll.OutcomeDone, res.Outcome)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, clock.Sleeps)
	assert.Equal(t, 15*time.Second, res.Elapsed)
}

func TestUntil_UnknownStatusKeepsPolling(t *testing.T) {
	clock := mocks.NewFakeClock()
	check, calls := scripted("queued_retry", "queued_retry", "failed")

	res, err := poll.Until(context.Background(), poll.Options{Interval: time.Second, Timeout: time.Minute, Clock: clock}, check)

	assert.NoError(t, err)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, "failed", res.Value)
}

func TestUntil_TimeoutFail(t *testing.T) {
	clock := mocks.NewFakeClock()
	check, calls := scripted("pending")

	res, err := poll.Until(context.Background(), poll.Options{Interval: 5 * time.Second, Timeout: 20 * time.Second, Clock: clock}, check)

	var te *poll.TimeoutError
	assert.True(t, errors.As(err, &te))
	assert.True(t, errors.Is(err, poll.ErrTimeout))
	assert.Equal(t, 20*time.Second, te.Timeout)
	assert.Equal(t, 4, *calls, "no check may happen once the deadline has passed")
	assert.Equal(t, poll.OutcomeTimedOut, res.Outcome)
	assert.Equal(t, "pending", res.Value)
}

func TestUntil_TimeoutAdvisory(t *testing.T) {
	clock := mocks.NewFakeClock()
	check, calls := scripted("pending", "in_progress")

	res, err := poll.Until(context.Background(), poll.Options{
		Interval:  10 * time.Second,
		Timeout:   25 * time.Second,
		OnTimeout: poll.TimeoutAdvisory,
		Clock:     clock,
	}, check)

	assert.NoError(t, err)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, poll.OutcomeTimedOut, res.Outcome)
	assert.Equal(t, "in_progress", res.Value)
	assert.Equal(t, 30*time.Second, res.Elapsed)
}

func TestUntil_CheckError(t *testing.T) {
	clock := mocks.NewFakeClock()
	boom := errors.New("boom")
	calls := 0

	res, err := poll.Until[string](context.Background(), poll.Options{Clock: clock}, func(_ context.Context) (string, bool, error) {
		calls++
		if calls == 2 {
			return "", false, boom
		}
		return "pending", false, nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, poll.OutcomeFailed, res.Outcome)
	assert.Equal(t, "pending", res.Value)
}

func TestUntil_CancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := mocks.NewFakeClock()
	clock.SleepFn = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	check, calls := scripted("pending")

	res, err := poll.Until(ctx, poll.Options{Clock: clock}, check)

	assert.ErrorIs(t, err, poll.ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, poll.ErrTimeout))
	assert.Equal(t, poll.OutcomeAborted, res.Outcome)
	assert.Equal(t, 1, *calls)
}

func TestUntil_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	check, calls := scripted("completed")
	res, err := poll.Until(ctx, poll.Options{Clock: mocks.NewFakeClock()}, check)

	assert.ErrorIs(t, err, poll.ErrAborted)
	assert.Equal(t, poll.OutcomeAborted, res.Outcome)
	assert.Equal(t, 0, *calls)
}

func TestUntil_Defaults(t *testing.T) {
	clock := mocks.NewFakeClock()
	check, calls := scripted("pending")

	_, err := poll.Until(context.Background(), poll.Options{Clock: clock}, check)

	assert.ErrorIs(t, err, poll.ErrTimeout)
	assert.Equal(t, int(poll.DefaultTimeout/poll.DefaultInterval), *calls)
	for _, d := range clock.Sleeps {
		assert.Equal(t, poll.DefaultInterval, d)
	}
}

func TestRealClock_Sleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := poll.RealClock{}.Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
	assert.NoError(t, poll.RealClock{}.Sleep(context.Background(), time.Millisecond))
}

func TestParseTimeoutPolicy(t *testing.T) {
	p, err := poll.ParseTimeoutPolicy("advisory")
	assert.NoError(t, err)
	assert.Equal(t, poll.TimeoutAdvisory, p)

	p, err = poll.ParseTimeoutPolicy(" FAIL ")
	assert.NoError(t, err)
	assert.Equal(t, poll.TimeoutFail, p)
	assert.Equal(t, "fail", p.String())

	_, err = poll.ParseTimeoutPolicy("later")
	assert.Error(t, err)
}
