package viewer

import (
	"image"

	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

// Current returns the item on screen with its index in the loaded
// sequence, or -1 when standalone.
func (v *Viewer) Current() (types.MediaItemRef, bool) {
	item, ok := v.cursor.Current()
	if !ok {
		return types.MediaItemRef{}, false
	}
	item.Index = v.cursor.Position()
	return item, true
}

// Position returns the cursor index, or -1.
func (v *Viewer) Position() int { return v.cursor.Position() }

// Standalone reports whether the current item has no overview.
func (v *Viewer) Standalone() bool { return v.cursor.Standalone() }

// Sequence returns the loaded overview. Callers must not keep it across
// events; it is replaced on open and close.
func (v *Viewer) Sequence() *overview.Sequence { return v.pager.Sequence() }

// Scope returns the active scope.
func (v *Viewer) Scope() types.Scope { return v.pager.Sequence().Scope() }

// CanMove reports whether a move by delta can succeed now or after a page.
func (v *Viewer) CanMove(delta int) bool { return v.open && v.cursor.CanMove(delta) }

// Loading reports whether a move is waiting for a page.
func (v *Viewer) Loading() bool { return v.cursor.HasDeferred() }

// ChromePhase returns the chrome phase, or false before the first open.
func (v *Viewer) ChromePhase() (interact.Phase, bool) {
	if v.chrome == nil {
		return interact.Hidden, false
	}
	return v.chrome.Phase(), true
}

// ChromeOpacity returns the controls opacity.
func (v *Viewer) ChromeOpacity() float64 {
	if !v.open {
		return 0
	}
	return v.chrome.Opacity(v.clock.Now())
}

// OverLevel returns the hover highlight of r in [0,1].
func (v *Viewer) OverLevel(r types.Region) float64 {
	return v.over.Level(v.clock.Now(), r)
}

// DownLevel returns the press highlight of r in [0,1].
func (v *Viewer) DownLevel(r types.Region) float64 {
	return v.down.Level(v.clock.Now(), r)
}

// Hovered returns the hover state.
func (v *Viewer) Hovered() State { return v.hover }

// Layout returns the effective layout with visibility rules applied.
func (v *Viewer) Layout() interact.Layout { return v.layout }

// Visible reports whether region r is shown.
func (v *Viewer) Visible(r types.Region) bool { return v.layout.Visible[r] }

// ZoomLevel returns the signed zoom level.
func (v *Viewer) ZoomLevel() int { return v.zoom.Level() }

// ContentBounds returns the zoomed and panned media rectangle.
func (v *Viewer) ContentBounds() image.Rectangle { return v.zoom.Bounds() }

// DocumentLoaded reports whether the current item's data is available.
func (v *Viewer) DocumentLoaded() bool { return v.docLoaded }

// Download describes the radial indicator for rendering.
type Download struct {
	Visible  bool
	Active   bool
	Progress float64
	Opacity  float64
	Rotation float64
	Stalled  bool
}

// Download returns the radial indicator state.
func (v *Viewer) Download() Download {
	now := v.clock.Now()
	return Download{
		Visible:  v.radial.Visible(),
		Active:   v.radial.Active(),
		Progress: v.radial.Progress(),
		Opacity:  v.radial.Opacity(now),
		Rotation: v.radial.Rotation(now),
		Stalled:  v.radial.Stalled(now, v.cfg.StallAfter),
	}
}

// Toast returns the toast text and opacity; empty text means hidden.
func (v *Viewer) Toast() (string, float64) {
	return v.toast.Text(), v.toast.Opacity(v.clock.Now())
}

// Animating reports whether a frame subscription is live.
func (v *Viewer) Animating() bool { return v.unsubscribe != nil }
