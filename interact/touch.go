package interact

import (
	"image"
	"time"
)

// DefaultLongPress is how long a still touch waits before it becomes a
// long press.
const DefaultLongPress = 500 * time.Millisecond

// Touch tracks the long-press side of a touch gesture. Click and drag
// resolution is shared with mouse input through Gesture.
type Touch struct {
	delay     time.Duration
	threshold int
	active    bool
	start     image.Point
	startedAt time.Time
	moved     bool
	fired     bool
}

// NewTouch creates a long-press tracker.
func NewTouch(delay time.Duration, threshold int) *Touch {
	if delay <= 0 {
		delay = DefaultLongPress
	}
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Touch{delay: delay, threshold: threshold}
}

// Delay returns the long-press delay.
func (t *Touch) Delay() time.Duration { return t.delay }

// Begin starts a touch at p and returns when the long press is due.
func (t *Touch) Begin(now time.Time, p image.Point) time.Time {
	*t = Touch{delay: t.delay, threshold: t.threshold, active: true, start: p, startedAt: now}
	return now.Add(t.delay)
}

// Active reports whether a touch is in progress.
func (t *Touch) Active() bool { return t.active }

// Move records movement. Moving past the drag threshold disarms the long
// press.
func (t *Touch) Move(p image.Point) {
	if t.active && manhattan(p.Sub(t.start)) >= t.threshold {
		t.moved = true
	}
}

// Fire is called when the long-press timer expires. It reports whether
// the long press took effect.
func (t *Touch) Fire(now time.Time) bool {
	if !t.active || t.moved || t.fired || now.Before(t.startedAt.Add(t.delay)) {
		return false
	}
	t.fired = true
	return true
}

// Fired reports whether the current touch became a long press.
func (t *Touch) Fired() bool { return t.fired }

// End finishes the touch and reports whether it was consumed by a long
// press, in which case release must not click.
func (t *Touch) End() bool {
	fired := t.fired
	t.active = false
	t.fired = false
	t.moved = false
	return fired
}
