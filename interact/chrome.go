// Package interact implements the viewer's interaction state: chrome
// visibility phases, per-region hover/press highlights, click-versus-drag
// gestures, zoom and pan, and touch long-press.
//
// Everything here is evaluated against timestamps passed in by the caller;
// nothing reads the wall clock.
package interact

import (
	"time"

	"github.com/pithecene-io/lightbox/anim"
)

// Phase is the chrome visibility phase.
type Phase int

const (
	Showing Phase = iota
	Shown
	Hiding
	Hidden
)

func (p Phase) String() string {
	switch p {
	case Showing:
		return "showing"
	case Shown:
		return "shown"
	case Hiding:
		return "hiding"
	default:
		return "hidden"
	}
}

// ChromeTimings configures the chrome fades.
type ChromeTimings struct {
	// Show is the fade-in duration.
	Show time.Duration
	// Hide is the fade-out duration.
	Hide time.Duration
	// WaitHide is the inactivity timeout before hiding.
	WaitHide time.Duration
}

// DefaultChromeTimings are the viewer's stock durations.
var DefaultChromeTimings = ChromeTimings{
	Show:     200 * time.Millisecond,
	Hide:     1000 * time.Millisecond,
	WaitHide: 2000 * time.Millisecond,
}

// Chrome is the overlay controls visibility machine.
type Chrome struct {
	timings      ChromeTimings
	phase        Phase
	startedAt    time.Time
	opacity      anim.Ramp
	lastActivity time.Time
	held         bool
}

// NewChrome creates chrome that starts fading in at now.
func NewChrome(now time.Time, timings ChromeTimings) *Chrome {
	c := &Chrome{timings: timings, lastActivity: now}
	c.enter(now, Showing, anim.Ramp{From: 0, To: 1, Start: now, Duration: timings.Show})
	return c
}

// Phase returns the current phase.
func (c *Chrome) Phase() Phase { return c.phase }

// PhaseStartedAt returns when the current phase began.
func (c *Chrome) PhaseStartedAt() time.Time { return c.startedAt }

// Opacity returns the controls opacity at now.
func (c *Chrome) Opacity(now time.Time) float64 {
	return anim.Clamp01(c.opacity.Value(now))
}

// Held reports whether auto-hide is suppressed.
func (c *Chrome) Held() bool { return c.held }

// SetHeld suppresses auto-hide while the pointer is over a control or a
// menu is open. Releasing the hold counts as activity.
func (c *Chrome) SetHeld(now time.Time, held bool) {
	if c.held == held {
		return
	}
	c.held = held
	if !held {
		c.lastActivity = now
	}
}

// Activity records user activity. Hidden chrome starts fading in; chrome
// that is fading out snaps back to fully shown without replaying a fade-in.
func (c *Chrome) Activity(now time.Time) {
	c.lastActivity = now
	switch c.phase {
	case Hidden:
		c.enter(now, Showing, c.opacity.Retarget(now, 1, c.timings.Show))
	case Hiding:
		c.enter(now, Shown, anim.Fixed(1))
	}
}

// Hide starts fading out immediately, regardless of holds.
func (c *Chrome) Hide(now time.Time) {
	if c.phase == Hidden || c.phase == Hiding {
		return
	}
	c.enter(now, Hiding, c.opacity.Retarget(now, 0, c.timings.Hide))
}

// HideDeadline returns when inactivity will start hiding the chrome, or
// false if no auto-hide is scheduled.
func (c *Chrome) HideDeadline() (time.Time, bool) {
	if c.held || (c.phase != Shown && c.phase != Showing) {
		return time.Time{}, false
	}
	return c.lastActivity.Add(c.timings.WaitHide), true
}

// Step applies time-driven transitions and reports whether a fade is
// still running.
func (c *Chrome) Step(now time.Time) bool {
	for {
		switch c.phase {
		case Showing:
			if !c.opacity.Done(now) {
				return true
			}
			c.enter(c.opacity.Start.Add(c.opacity.Duration), Shown, anim.Fixed(1))
		case Shown:
			deadline, ok := c.HideDeadline()
			if !ok || now.Before(deadline) {
				return false
			}
			c.enter(deadline, Hiding, anim.Ramp{From: 1, To: 0, Start: deadline, Duration: c.timings.Hide})
		case Hiding:
			if !c.opacity.Done(now) {
				return true
			}
			c.enter(c.opacity.Start.Add(c.opacity.Duration), Hidden, anim.Fixed(0))
		default:
			return false
		}
	}
}

func (c *Chrome) enter(at time.Time, phase Phase, opacity anim.Ramp) {
	c.phase = phase
	c.startedAt = at
	c.opacity = opacity
}
