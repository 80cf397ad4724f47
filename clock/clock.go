// Package clock supplies the time source that drives every timed transition
// in the viewer.
//
// A Source hands out timestamps, frame-step subscriptions and one-shot timers.
// Implementations must deliver callbacks on the same logical thread that owns
// the viewer; the viewer never locks.
package clock

import "time"

// Source is the injected clock.
type Source interface {
	// Now returns the current monotonic time.
	Now() time.Time
	// Subscribe registers step to be called once per frame until the
	// returned function is called.
	Subscribe(step func(now time.Time)) (unsubscribe func())
	// AfterFunc calls fn once after d has elapsed unless stop is called first.
	AfterFunc(d time.Duration, fn func(now time.Time)) (stop func())
}

// Progress returns the linear progress of an interval that started at
// start and lasts d, clamped to [0,1]. A non-positive d is complete.
func Progress(now, start time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= d {
		return 1
	}
	return float64(elapsed) / float64(d)
}
