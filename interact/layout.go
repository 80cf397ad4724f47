package interact

import (
	"image"

	"github.com/pithecene-io/lightbox/types"
)

// hitOrder is the hit-test priority: controls before passive text.
var hitOrder = [...]types.Region{
	types.RegionClose,
	types.RegionLeftNav,
	types.RegionRightNav,
	types.RegionSave,
	types.RegionMore,
	types.RegionIcon,
	types.RegionHeader,
	types.RegionName,
	types.RegionDate,
}

// Layout holds the hit rectangles the rendering layer computed for the
// current item. Content is the on-screen media rectangle.
type Layout struct {
	Rects   [types.RegionCount]image.Rectangle
	Visible [types.RegionCount]bool
	Content image.Rectangle
}

// Set places region r and marks its visibility.
func (l *Layout) Set(r types.Region, rect image.Rectangle, visible bool) {
	l.Rects[r] = rect
	l.Visible[r] = visible
}

// HitTest returns the highest-priority visible region containing p.
func (l *Layout) HitTest(p image.Point) types.Region {
	for _, r := range hitOrder {
		if l.Visible[r] && p.In(l.Rects[r]) {
			return r
		}
	}
	return types.RegionNone
}
