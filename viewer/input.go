package viewer

import (
	"image"
	"time"

	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/types"
)

// Key is a keyboard command after the windowing layer resolved bindings.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyPrev
	KeyNext
	KeySave
	KeyCopy
	KeyZoomIn
	KeyZoomOut
	KeyZoomReset
	KeyOpen
	KeyHideChrome
)

// activity records user input for the chrome machine.
func (v *Viewer) activity(now time.Time) {
	v.chrome.Activity(now)
}

// SetLayout installs the region rectangles the renderer computed for the
// current frame and re-evaluates the hover target.
func (v *Viewer) SetLayout(l interact.Layout) {
	v.placed = l
	if !v.open {
		v.layout = l
		return
	}
	v.applyVisibility()
	v.updateHover(v.clock.Now(), v.layout.HitTest(v.pointer))
	v.refresh(v.clock.Now())
}

// SetGeometry sets the viewport and the natural size of the current
// media, resetting zoom to fit.
func (v *Viewer) SetGeometry(viewport, content image.Point) {
	v.zoom.SetGeometry(viewport, content)
	v.changed()
}

// SetViewport resizes the viewport keeping the zoom level.
func (v *Viewer) SetViewport(viewport image.Point) {
	v.zoom.SetViewport(viewport)
	v.changed()
}

func (v *Viewer) updateHover(now time.Time, r types.Region) {
	if r == v.hover.Region {
		return
	}
	v.over.Transition(now, v.hover.Region, r)
	v.hover = State{Region: r, Since: now}
}

// PointerMove handles pointer movement to p.
func (v *Viewer) PointerMove(p image.Point) {
	if !v.open {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	v.updateHover(now, v.layout.HitTest(p))
	v.drag(p)
	v.refresh(now)
}

func (v *Viewer) drag(p image.Point) {
	delta, dragging := v.gesture.Move(p)
	if !dragging {
		return
	}
	if v.gesture.Target().Region == types.RegionNone && v.zoom.Pannable() {
		v.zoom.Pan(delta)
	}
}

// PointerPress starts a press at p.
func (v *Viewer) PointerPress(p image.Point) {
	if !v.open {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	r := v.layout.HitTest(p)
	v.updateHover(now, r)
	v.press(now, p, r)
	v.refresh(now)
}

func (v *Viewer) press(now time.Time, p image.Point, r types.Region) {
	if v.gesture.Active() {
		v.down.Transition(now, v.gesture.Target().Region, types.RegionNone)
		v.gesture.Abort()
	}
	v.gesture.Press(now, p, r)
	v.down.Transition(now, types.RegionNone, r)
}

// Pressed returns the press state.
func (v *Viewer) Pressed() State {
	if !v.gesture.Active() {
		return State{Region: types.RegionNone}
	}
	return v.gesture.Target()
}

// PointerRelease ends the press at p. A click fires the action of the
// pressed region; a drag fires nothing.
func (v *Viewer) PointerRelease(p image.Point) {
	if !v.open {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	v.release(now, p)
	v.updateHover(now, v.layout.HitTest(p))
	v.refresh(now)
}

func (v *Viewer) release(now time.Time, p image.Point) {
	if !v.gesture.Active() {
		return
	}
	pressed := v.gesture.Target().Region
	v.down.Transition(now, pressed, types.RegionNone)
	if pressed != types.RegionNone && !v.layout.Visible[pressed] {
		v.gesture.Abort()
		v.metrics.IncGestureAborted()
		return
	}
	v.drag(p)
	dragged := v.gesture.Dragging()
	r, clicked := v.gesture.Release(p, v.layout.HitTest(p))
	switch {
	case dragged:
		v.metrics.IncDrag()
	case clicked:
		v.metrics.IncClick()
		v.click(r, p)
	}
}

// click runs the action of a resolved click on r at p.
func (v *Viewer) click(r types.Region, p image.Point) {
	switch r {
	case types.RegionLeftNav:
		v.navigate(-1)
	case types.RegionRightNav:
		v.navigate(1)
	case types.RegionClose:
		v.emit(types.ActionClose, 0)
	case types.RegionSave:
		v.emit(types.ActionSave, 0)
	case types.RegionMore:
		v.emit(types.ActionDropdown, 0)
	case types.RegionHeader:
		if !v.cursor.Standalone() {
			v.emit(types.ActionOpenOverview, 0)
		}
	case types.RegionName:
		v.emit(types.ActionShowSender, 0)
	case types.RegionDate:
		v.emit(types.ActionToMessage, 0)
	case types.RegionIcon:
		v.clickIcon()
	case types.RegionNone:
		if c := v.contentRect(); !c.Empty() && !p.In(c) {
			v.emit(types.ActionClose, 0)
		}
	}
}

// clickIcon opens a loaded document or starts tracking its download.
func (v *Viewer) clickIcon() {
	if v.docLoaded {
		v.emit(types.ActionOpenDocument, 0)
		return
	}
	if !v.radial.Active() {
		v.radial.Start(v.clock.Now())
	}
	v.emit(types.ActionDownload, 0)
}

func (v *Viewer) contentRect() image.Rectangle {
	if !v.layout.Content.Empty() {
		return v.layout.Content
	}
	return v.zoom.Bounds()
}

// Key handles a keyboard command.
func (v *Viewer) Key(k Key) {
	if !v.open {
		return
	}
	now := v.clock.Now()
	if k == KeyHideChrome {
		v.chrome.Hide(now)
		v.refresh(now)
		return
	}
	v.activity(now)
	switch k {
	case KeyEscape:
		v.emit(types.ActionClose, 0)
	case KeyPrev:
		v.navigate(-1)
	case KeyNext:
		v.navigate(1)
	case KeySave:
		v.emit(types.ActionSave, 0)
	case KeyCopy:
		v.emit(types.ActionCopy, 0)
	case KeyZoomIn:
		v.zoom.ZoomIn()
	case KeyZoomOut:
		v.zoom.ZoomOut()
	case KeyZoomReset:
		v.zoom.Reset()
	case KeyOpen:
		if item, ok := v.Current(); ok && item.Kind == types.MediaKindDocument {
			v.clickIcon()
		}
	}
	v.refresh(now)
}

// Wheel handles a wheel step of delta notches. With ctrl it zooms around
// the pointer; otherwise it navigates.
func (v *Viewer) Wheel(delta int, ctrl bool) {
	if !v.open || delta == 0 {
		return
	}
	now := v.clock.Now()
	v.activity(now)
	if ctrl {
		// Zoom works in viewport coordinates; the pointer is in layout ones.
		v.zoom.ZoomAt(v.zoom.Level()+delta, v.pointer.Sub(v.layout.Content.Min))
	} else if delta > 0 {
		v.navigate(1)
	} else {
		v.navigate(-1)
	}
	v.refresh(now)
}

// TouchBegin starts a touch at p. A touch that stays still for the
// long-press delay opens the context menu instead of clicking.
func (v *Viewer) TouchBegin(p image.Point) {
	if !v.open {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	due := v.touch.Begin(now, p)
	v.cancelTimer(&v.longPressTimer)
	v.longPressTimer = v.clock.AfterFunc(due.Sub(now), v.onLongPress)
	v.press(now, p, v.layout.HitTest(p))
	v.refresh(now)
}

// TouchMove moves the active touch.
func (v *Viewer) TouchMove(p image.Point) {
	if !v.open || !v.touch.Active() {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	v.touch.Move(p)
	v.drag(p)
	v.refresh(now)
}

// TouchEnd lifts the touch at p.
func (v *Viewer) TouchEnd(p image.Point) {
	if !v.open || !v.touch.Active() {
		return
	}
	now := v.clock.Now()
	v.pointer = p
	v.activity(now)
	v.cancelTimer(&v.longPressTimer)
	if v.touch.End() {
		v.down.Transition(now, v.gesture.Target().Region, types.RegionNone)
		v.gesture.Abort()
	} else {
		v.release(now, p)
	}
	v.refresh(now)
}

// TouchCancel drops the active touch without any action.
func (v *Viewer) TouchCancel() {
	if !v.open || !v.touch.Active() {
		return
	}
	now := v.clock.Now()
	v.cancelTimer(&v.longPressTimer)
	v.touch.End()
	v.down.Transition(now, v.gesture.Target().Region, types.RegionNone)
	v.gesture.Abort()
	v.refresh(now)
}

func (v *Viewer) onLongPress(now time.Time) {
	v.longPressTimer = nil
	if !v.open || !v.touch.Fire(now) {
		return
	}
	v.metrics.IncLongPress()
	v.down.Transition(now, v.gesture.Target().Region, types.RegionNone)
	v.gesture.Abort()
	v.emit(types.ActionOpenContextMenu, 0)
	v.refresh(now)
}
