package progress

import (
	"time"

	"github.com/pithecene-io/lightbox/clock"
)

// ToastTimings configures the save-message toast.
type ToastTimings struct {
	FadeIn  time.Duration
	Hold    time.Duration
	FadeOut time.Duration
}

// DefaultToastTimings are the stock toast durations.
var DefaultToastTimings = ToastTimings{
	FadeIn:  200 * time.Millisecond,
	Hold:    2000 * time.Millisecond,
	FadeOut: 500 * time.Millisecond,
}

// Toast is a short message that fades in, holds, then fades out.
type Toast struct {
	timings ToastTimings
	text    string
	shownAt time.Time
	active  bool
}

// NewToast creates a hidden toast.
func NewToast(timings ToastTimings) *Toast {
	return &Toast{timings: timings}
}

// Show displays text from now, restarting any toast on screen.
func (t *Toast) Show(now time.Time, text string) {
	t.text = text
	t.shownAt = now
	t.active = true
}

// Hide removes the toast immediately.
func (t *Toast) Hide() {
	t.active = false
	t.text = ""
}

// Text returns the message, empty when hidden.
func (t *Toast) Text() string { return t.text }

// Visible reports whether the toast is on screen.
func (t *Toast) Visible() bool { return t.active }

// Opacity returns the toast opacity at now.
func (t *Toast) Opacity(now time.Time) float64 {
	if !t.active {
		return 0
	}
	in := t.shownAt.Add(t.timings.FadeIn)
	out := in.Add(t.timings.Hold)
	switch {
	case now.Before(in):
		return clock.Progress(now, t.shownAt, t.timings.FadeIn)
	case now.Before(out):
		return 1
	default:
		return 1 - clock.Progress(now, out, t.timings.FadeOut)
	}
}

// Step hides the toast once it has faded and reports whether a fade is
// running. While the toast holds at full opacity no frames are needed;
// FadeOutAt tells the caller when to resume.
func (t *Toast) Step(now time.Time) bool {
	if !t.active {
		return false
	}
	in := t.shownAt.Add(t.timings.FadeIn)
	out := in.Add(t.timings.Hold)
	end := out.Add(t.timings.FadeOut)
	switch {
	case !now.Before(end):
		t.Hide()
		return false
	case now.Before(in):
		return true
	default:
		return !now.Before(out)
	}
}

// FadeOutAt returns when the fade-out starts, or false when hidden.
func (t *Toast) FadeOutAt() (time.Time, bool) {
	if !t.active {
		return time.Time{}, false
	}
	return t.shownAt.Add(t.timings.FadeIn + t.timings.Hold), true
}
