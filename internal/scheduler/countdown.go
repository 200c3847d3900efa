package scheduler

import (
	"context"
	"time"
)

// Countdown reports the time left until a moving target on a fixed cadence.
type Countdown struct {
	Interval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run calls report with the remaining duration immediately and then on every
// tick. target is re-read each time so an extended or cancelled deadline is
// picked up. Run returns nil once the target elapses or disappears, and
// ctx.Err() when cancelled.
func (c Countdown) Run(ctx context.Context, target func() (time.Time, bool), report func(remaining time.Duration)) error {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Second
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	step := func() bool {
		deadline, ok := target()
		if !ok {
			return true
		}
		remaining := max(deadline.Sub(now()), 0)
		report(remaining)
		return remaining == 0
	}

	if step() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if step() {
				return nil
			}
		}
	}
}
