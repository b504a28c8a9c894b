package core

import (
	"context"
	"time"
)

// FixedStep holds a loop to a constant period regardless of how long each
// iteration takes.
type FixedStep struct {
	step time.Duration
	now  func() time.Time
}

// NewFixedStep constructs a FixedStep targeting the given period.
func NewFixedStep(period time.Duration) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetPeriod(period)
	return fs
}

// NewFixedStepTPS constructs a FixedStep targeting the given ticks per second.
func NewFixedStepTPS(tps int) *FixedStep {
	if tps <= 0 {
		tps = 10
	}
	return NewFixedStep(time.Second / time.Duration(tps))
}

// SetPeriod changes the tick period. Non-positive values fall back to 100ms.
func (f *FixedStep) SetPeriod(period time.Duration) {
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	f.step = period
}

// Period returns the configured tick period.
func (f *FixedStep) Period() time.Duration { return f.step }

// Remaining reports how long to sleep so that an iteration which began at
// start lasts exactly one period. It never returns a negative duration.
func (f *FixedStep) Remaining(start time.Time) time.Duration {
	elapsed := f.now().Sub(start)
	if elapsed >= f.step {
		return 0
	}
	return f.step - elapsed
}

// Wait sleeps for the remainder of the period begun at start. It returns the
// context error if ctx is done first.
func (f *FixedStep) Wait(ctx context.Context, start time.Time) error {
	d := f.Remaining(start)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
