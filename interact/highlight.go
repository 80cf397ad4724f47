package interact

import (
	"time"

	"github.com/pithecene-io/lightbox/anim"
	"github.com/pithecene-io/lightbox/types"
)

// DefaultHighlightFade is the hover highlight fade duration.
const DefaultHighlightFade = 150 * time.Millisecond

// Highlights tracks one opacity ramp per region in a fixed table.
type Highlights struct {
	fade  time.Duration
	ramps [types.RegionCount]anim.Ramp
}

// NewHighlights creates a table with every region at zero.
func NewHighlights(fade time.Duration) *Highlights {
	return &Highlights{fade: fade}
}

// Transition fades from toward zero and to toward full highlight.
func (h *Highlights) Transition(now time.Time, from, to types.Region) {
	if from == to {
		return
	}
	if from != types.RegionNone {
		h.ramps[from] = h.ramps[from].Retarget(now, 0, h.fade)
	}
	if to != types.RegionNone {
		h.ramps[to] = h.ramps[to].Retarget(now, 1, h.fade)
	}
}

// Level returns the highlight of r in [0,1] at now.
func (h *Highlights) Level(now time.Time, r types.Region) float64 {
	if r <= types.RegionNone || r >= types.RegionCount {
		return 0
	}
	return anim.Clamp01(h.ramps[r].Value(now))
}

// Animating reports whether any region is still fading at now.
func (h *Highlights) Animating(now time.Time) bool {
	for i := range h.ramps {
		if !h.ramps[i].Done(now) {
			return true
		}
	}
	return false
}

// Clear drops every highlight at once.
func (h *Highlights) Clear() {
	h.ramps = [types.RegionCount]anim.Ramp{}
}

// Target is a region together with when it became the target.
type Target struct {
	Region types.Region
	Since  time.Time
}
