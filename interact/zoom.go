package interact

import (
	"image"
	"math"
)

// MaxZoomLevel bounds the signed zoom level in both directions.
const MaxZoomLevel = 7

// Scale maps a signed zoom level to a scale factor. Positive levels
// magnify by whole steps, negative levels shrink by the same steps.
func Scale(level int) float64 {
	if level >= 0 {
		return float64(1 + level)
	}
	return 1 / float64(1-level)
}

// Zoom is the zoom level plus the pan offset of the content inside the
// viewport. Offset is the content's top-left corner in viewport space.
type Zoom struct {
	level    int
	offset   image.Point
	viewport image.Point
	content  image.Point
}

// Level returns the signed zoom level.
func (z *Zoom) Level() int { return z.level }

// Offset returns the clamped content offset.
func (z *Zoom) Offset() image.Point { return z.offset }

// Size returns the scaled content size.
func (z *Zoom) Size() image.Point {
	s := Scale(z.level)
	return image.Pt(scaled(z.content.X, s), scaled(z.content.Y, s))
}

// Bounds returns the on-screen content rectangle.
func (z *Zoom) Bounds() image.Rectangle {
	return image.Rectangle{Min: z.offset, Max: z.offset.Add(z.Size())}
}

// Pannable reports whether the scaled content overflows the viewport on
// either axis.
func (z *Zoom) Pannable() bool {
	s := z.Size()
	return s.X > z.viewport.X || s.Y > z.viewport.Y
}

// SetGeometry sets the viewport and natural content sizes and starts at
// the fitting level.
func (z *Zoom) SetGeometry(viewport, content image.Point) {
	z.viewport = viewport
	z.content = content
	z.level = z.FitLevel()
	z.offset = image.Point{}
	z.clamp()
}

// SetViewport resizes the viewport keeping the level.
func (z *Zoom) SetViewport(viewport image.Point) {
	z.viewport = viewport
	z.clamp()
}

// FitLevel returns the largest non-positive level at which the content
// fits the viewport.
func (z *Zoom) FitLevel() int {
	for level := 0; level > -MaxZoomLevel; level-- {
		s := Scale(level)
		if scaled(z.content.X, s) <= z.viewport.X && scaled(z.content.Y, s) <= z.viewport.Y {
			return level
		}
	}
	return -MaxZoomLevel
}

// ZoomIn steps one level in around the viewport center.
func (z *Zoom) ZoomIn() bool { return z.ZoomAt(z.level+1, z.center()) }

// ZoomOut steps one level out around the viewport center.
func (z *Zoom) ZoomOut() bool { return z.ZoomAt(z.level-1, z.center()) }

// Reset returns to the fitting level.
func (z *Zoom) Reset() bool { return z.ZoomAt(z.FitLevel(), z.center()) }

// ZoomAt changes the level keeping the content point under anchor fixed.
// It reports whether the level changed.
func (z *Zoom) ZoomAt(level int, anchor image.Point) bool {
	level = max(-MaxZoomLevel, min(MaxZoomLevel, level))
	if level == z.level {
		return false
	}
	from, to := Scale(z.level), Scale(level)
	cx := float64(anchor.X-z.offset.X) / from
	cy := float64(anchor.Y-z.offset.Y) / from
	z.level = level
	z.offset = image.Pt(anchor.X-int(math.Round(cx*to)), anchor.Y-int(math.Round(cy*to)))
	z.clamp()
	return true
}

// Pan moves the content by delta and reports whether the offset changed.
func (z *Zoom) Pan(delta image.Point) bool {
	prev := z.offset
	z.offset = z.offset.Add(delta)
	z.clamp()
	return z.offset != prev
}

func (z *Zoom) center() image.Point {
	return image.Pt(z.viewport.X/2, z.viewport.Y/2)
}

// clamp centers axes smaller than the viewport and keeps larger axes
// covering it.
func (z *Zoom) clamp() {
	s := z.Size()
	z.offset.X = snap(z.offset.X, s.X, z.viewport.X)
	z.offset.Y = snap(z.offset.Y, s.Y, z.viewport.Y)
}

func snap(off, size, viewport int) int {
	if size <= viewport {
		return (viewport - size) / 2
	}
	return max(viewport-size, min(0, off))
}

func scaled(n int, s float64) int {
	return int(math.Round(float64(n) * s))
}
