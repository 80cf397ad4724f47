package viewer

import (
	"time"

	"github.com/pithecene-io/lightbox/types"
)

// step advances every timed state to now and reports whether any
// animation still needs frames.
func (v *Viewer) step(now time.Time) bool {
	active := v.chrome.Step(now)
	if v.over.Animating(now) || v.down.Animating(now) {
		active = true
	}
	if v.radial.Step(now) {
		active = true
	}
	if v.toast.Step(now) {
		active = true
	}
	return active
}

// schedule steps timed state, keeps the frame subscription alive exactly
// while something animates and arms the wake-up timers.
func (v *Viewer) schedule(now time.Time) {
	if v.step(now) {
		if v.unsubscribe == nil {
			v.unsubscribe = v.clock.Subscribe(v.onFrame)
		}
	} else if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	v.armHide(now)
	v.armToast(now)
}

func (v *Viewer) onFrame(now time.Time) {
	if !v.open {
		return
	}
	v.schedule(now)
	v.changed()
}

func (v *Viewer) armHide(now time.Time) {
	deadline, ok := v.chrome.HideDeadline()
	if !ok {
		v.cancelTimer(&v.hideTimer)
		v.hideArmedAt = time.Time{}
		return
	}
	if v.hideTimer != nil && deadline.Equal(v.hideArmedAt) {
		return
	}
	v.cancelTimer(&v.hideTimer)
	v.hideArmedAt = deadline
	v.hideTimer = v.clock.AfterFunc(deadline.Sub(now), func(at time.Time) {
		v.hideTimer = nil
		v.hideArmedAt = time.Time{}
		if v.open {
			v.refresh(at)
		}
	})
}

func (v *Viewer) armToast(now time.Time) {
	out, ok := v.toast.FadeOutAt()
	if !ok || !now.Before(out) {
		v.cancelTimer(&v.toastTimer)
		v.toastArmedAt = time.Time{}
		return
	}
	if v.toastTimer != nil && out.Equal(v.toastArmedAt) {
		return
	}
	v.cancelTimer(&v.toastTimer)
	v.toastArmedAt = out
	v.toastTimer = v.clock.AfterFunc(out.Sub(now), func(at time.Time) {
		v.toastTimer = nil
		v.toastArmedAt = time.Time{}
		if v.open {
			v.refresh(at)
		}
	})
}

// applyVisibility hides controls that cannot act on the current item.
func (v *Viewer) applyVisibility() {
	v.layout = v.placed
	l := &v.layout
	l.Visible[types.RegionLeftNav] = l.Visible[types.RegionLeftNav] && v.cursor.CanMove(-1)
	l.Visible[types.RegionRightNav] = l.Visible[types.RegionRightNav] && v.cursor.CanMove(1)
	if v.cursor.Standalone() && !v.docLoaded {
		l.Visible[types.RegionSave] = false
	}
}
