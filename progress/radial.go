// Package progress tracks timed indicators that are not part of the chrome:
// the radial download indicator and the save-message toast.
package progress

import (
	"math"
	"time"

	"github.com/pithecene-io/lightbox/anim"
)

const (
	// DefaultRadialFade is how long the indicator takes to fade out after
	// the fetch completes.
	DefaultRadialFade = 200 * time.Millisecond
	// RadialPeriod is one full turn of the spinning arc.
	RadialPeriod = 1500 * time.Millisecond
	// DefaultStallAfter is the update gap after which a fetch counts as
	// stalled.
	DefaultStallAfter = 5 * time.Second
)

// Radial is the radial indicator for one in-flight document fetch.
type Radial struct {
	fade          time.Duration
	active        bool
	shown         bool
	progress      float64
	opacity       anim.Ramp
	firstSeenAt   time.Time
	animStartedAt time.Time
	lastUpdatedAt time.Time
}

// NewRadial creates an idle indicator.
func NewRadial(fade time.Duration) *Radial {
	if fade <= 0 {
		fade = DefaultRadialFade
	}
	return &Radial{fade: fade}
}

// Start observes a fetch starting at now. A fade-out in progress is
// abandoned and opacity returns to full at once.
func (r *Radial) Start(now time.Time) {
	if !r.shown {
		r.firstSeenAt = now
		r.animStartedAt = now
	} else if !r.active {
		r.animStartedAt = now
	}
	r.active = true
	r.shown = true
	r.progress = 0
	r.opacity = anim.Fixed(1)
	r.lastUpdatedAt = now
}

// Update records fetch progress in [0,1].
func (r *Radial) Update(now time.Time, progress float64) {
	if !r.active {
		r.Start(now)
	}
	r.progress = anim.Clamp01(progress)
	r.lastUpdatedAt = now
}

// Complete marks the fetch done and starts the fade-out.
func (r *Radial) Complete(now time.Time) {
	if !r.active {
		return
	}
	r.active = false
	r.progress = 1
	r.lastUpdatedAt = now
	r.opacity = anim.Ramp{From: r.opacity.Value(now), To: 0, Start: now, Duration: r.fade}
}

// Step drops the indicator once it has faded out and reports whether it
// still needs frames.
func (r *Radial) Step(now time.Time) bool {
	if !r.shown {
		return false
	}
	if r.active {
		return true
	}
	if r.opacity.Done(now) {
		r.shown = false
		return false
	}
	return true
}

// Visible reports whether the indicator should be drawn.
func (r *Radial) Visible() bool { return r.shown }

// Active reports whether the fetch is still in flight.
func (r *Radial) Active() bool { return r.active }

// Progress returns the last reported progress.
func (r *Radial) Progress() float64 { return r.progress }

// Opacity returns the indicator opacity at now.
func (r *Radial) Opacity(now time.Time) float64 {
	if !r.shown {
		return 0
	}
	return anim.Clamp01(r.opacity.Value(now))
}

// Rotation returns the arc's start angle at now as a fraction of a turn.
func (r *Radial) Rotation(now time.Time) float64 {
	if !r.shown {
		return 0
	}
	turns := float64(now.Sub(r.animStartedAt)) / float64(RadialPeriod)
	return turns - math.Floor(turns)
}

// Stalled reports whether an active fetch has gone quiet for at least
// after. It does not change any state.
func (r *Radial) Stalled(now time.Time, after time.Duration) bool {
	return r.active && now.Sub(r.lastUpdatedAt) >= after
}

// FirstSeenAt returns when the current indicator first appeared.
func (r *Radial) FirstSeenAt() time.Time { return r.firstSeenAt }

// AnimStartedAt returns the rotation anchor.
func (r *Radial) AnimStartedAt() time.Time { return r.animStartedAt }

// LastUpdatedAt returns when progress was last reported.
func (r *Radial) LastUpdatedAt() time.Time { return r.lastUpdatedAt }
