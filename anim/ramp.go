// Package anim provides time-based linear value ramps evaluated on demand.
package anim

import (
	"time"

	"github.com/pithecene-io/lightbox/clock"
)

// Ramp moves a value linearly from From to To over Duration starting at
// Start. The zero Ramp is settled at 0.
type Ramp struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// Fixed returns a settled ramp holding v.
func Fixed(v float64) Ramp {
	return Ramp{From: v, To: v}
}

// Value returns the ramp value at now.
func (r Ramp) Value(now time.Time) float64 {
	p := clock.Progress(now, r.Start, r.Duration)
	return r.From + (r.To-r.From)*p
}

// Done reports whether the ramp has reached its target at now.
func (r Ramp) Done(now time.Time) bool {
	return r.From == r.To || clock.Progress(now, r.Start, r.Duration) >= 1
}

// Retarget starts a new ramp toward to from the current value at now.
// The duration is scaled by the remaining distance so a half-finished
// fade reverses in half the time.
func (r Ramp) Retarget(now time.Time, to float64, full time.Duration) Ramp {
	cur := r.Value(now)
	dist := to - cur
	if dist < 0 {
		dist = -dist
	}
	return Ramp{
		From:     cur,
		To:       to,
		Start:    now,
		Duration: time.Duration(float64(full) * dist),
	}
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
