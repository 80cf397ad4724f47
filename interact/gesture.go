package interact

import (
	"image"
	"time"

	"github.com/pithecene-io/lightbox/types"
)

// DefaultDragThreshold is the manhattan distance, in layout units, that
// turns a press into a drag.
const DefaultDragThreshold = 10

// Gesture tracks one press from down to up and decides click versus drag.
type Gesture struct {
	threshold int
	active    bool
	target    Target
	start     image.Point
	last      image.Point
	dragging  bool
}

// NewGesture creates a gesture tracker.
func NewGesture(threshold int) *Gesture {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Gesture{threshold: threshold}
}

// Press starts a gesture over region at p.
func (g *Gesture) Press(now time.Time, p image.Point, region types.Region) {
	g.active = true
	g.target = Target{Region: region, Since: now}
	g.start = p
	g.last = p
	g.dragging = false
}

// Active reports whether a press is in progress.
func (g *Gesture) Active() bool { return g.active }

// Target returns the pressed region.
func (g *Gesture) Target() Target { return g.target }

// Dragging reports whether the press has become a drag.
func (g *Gesture) Dragging() bool { return g.dragging }

// Moved reports whether the pointer moved at all since the press.
func (g *Gesture) Moved() bool { return g.active && g.last != g.start }

// Move updates the pointer and returns the delta since the previous move
// when the gesture is a drag.
func (g *Gesture) Move(p image.Point) (image.Point, bool) {
	if !g.active {
		return image.Point{}, false
	}
	if !g.dragging && manhattan(p.Sub(g.start)) >= g.threshold {
		g.dragging = true
	}
	delta := p.Sub(g.last)
	g.last = p
	if !g.dragging {
		return image.Point{}, false
	}
	return delta, true
}

// Release ends the gesture at p over region. It returns the clicked region
// when press and release hit the same region and the pointer never went
// past the drag threshold.
func (g *Gesture) Release(p image.Point, region types.Region) (types.Region, bool) {
	if !g.active {
		return types.RegionNone, false
	}
	g.Move(p)
	pressed := g.target.Region
	clicked := !g.dragging && region == pressed
	g.active = false
	g.dragging = false
	g.target = Target{}
	if !clicked {
		return types.RegionNone, false
	}
	return pressed, true
}

// Abort drops the gesture without a click.
func (g *Gesture) Abort() {
	g.active = false
	g.dragging = false
	g.target = Target{}
}

func manhattan(p image.Point) int {
	x, y := p.X, p.Y
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	return x + y
}
