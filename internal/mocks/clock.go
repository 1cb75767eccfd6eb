package mocks

import (
	"context"
	"time"
)

// FakeClock is a manually advanced clock. Sleep returns immediately after moving the clock forward.
type FakeClock struct {
	Current time.Time
	Sleeps  []time.Duration

	// SleepFn, if set, is called before the clock is advanced. A non-nil error is returned as is.
	SleepFn func(ctx context.Context, d time.Duration) error
}

// NewFakeClock returns a FakeClock set to a fixed point in time.
func NewFakeClock() *FakeClock {
	return &FakeClock{Current: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	return c.Current
}

// Sleep records d and advances the clock by it.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if c.SleepFn != nil {
		if err := c.SleepFn(ctx, d); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Sleeps = append(c.Sleeps, d)
	c.Current = c.Current.Add(d)
	return nil
}
