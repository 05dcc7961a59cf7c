package auth

import (
	"context"
	"time"
)

const paceSteps = 50

// Pace waits d, reporting progress between 0 and 1 to tick along the way.
// It is only there so the login screen has something to show; tick may be
// nil. Pace returns ctx.Err() if ctx ends first.
func Pace(ctx context.Context, d time.Duration, tick func(float64)) error {
	if tick == nil {
		tick = func(float64) {}
	}
	if d <= 0 {
		tick(1)
		return nil
	}

	interval := d / paceSteps
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	start := time.Now()
	tick(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			tick(1)
			return nil
		case now := <-ticker.C:
			if f := float64(now.Sub(start)) / float64(d); f < 1 {
				tick(f)
			}
		}
	}
}
