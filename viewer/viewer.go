// Package viewer is the media viewer core: one owned instance per open
// overlay, combining the overview pager, the navigation cursor, the
// interaction machine and the download indicator on an injected clock.
//
// A Viewer is single-threaded. Input events, page responses, timers and
// frame steps must all be delivered from the same goroutine.
package viewer

import (
	"errors"
	"image"
	"time"

	"github.com/pithecene-io/lightbox/clock"
	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/nav"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/progress"
	"github.com/pithecene-io/lightbox/types"
)

// ErrNoClock is returned by New when Options.Clock is nil.
var ErrNoClock = errors.New("viewer: clock source is required")

// Options wires the viewer to its collaborators.
type Options struct {
	// Clock drives every timed transition. Required.
	Clock clock.Source
	// Logger receives lifecycle and paging logs. Optional.
	Logger *log.Logger
	// Metrics counts paging, navigation and interaction. Optional.
	Metrics *metrics.Collector
	// OnChange is called after any state the renderer reads has changed.
	OnChange func()
	// OnAction receives resolved actions for the chrome layer.
	OnAction func(types.ActionEvent)
}

// State is a region together with when it became current.
type State = interact.Target

// Viewer is the media viewer core.
type Viewer struct {
	cfg      Config
	clock    clock.Source
	baseLog  *log.Logger
	log      *log.Logger
	metrics  *metrics.Collector
	onChange func()
	onAction func(types.ActionEvent)

	open   bool
	pager  *overview.Pager
	cursor *nav.Cursor
	outbox []overview.Request
	// navDelta is the delta of a user move waiting for a page; 0 when none.
	navDelta int

	chrome   *interact.Chrome
	over     *interact.Highlights
	down     *interact.Highlights
	hover    State
	gesture  *interact.Gesture
	touch    *interact.Touch
	zoom     interact.Zoom
	placed   interact.Layout
	layout   interact.Layout
	pointer  image.Point
	dropdown bool

	radial    *progress.Radial
	toast     *progress.Toast
	docLoaded bool

	unsubscribe    func()
	hideTimer      func()
	hideArmedAt    time.Time
	toastTimer     func()
	toastArmedAt   time.Time
	longPressTimer func()
}

// New creates a closed viewer.
func New(cfg Config, opts Options) (*Viewer, error) {
	if opts.Clock == nil {
		return nil, ErrNoClock
	}
	cfg = cfg.withDefaults()
	v := &Viewer{
		cfg:      cfg,
		clock:    opts.Clock,
		baseLog:  opts.Logger,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
		onAction: opts.OnAction,
		pager:    overview.NewPager(cfg.PageSize),
		gesture:  interact.NewGesture(cfg.DragThreshold),
		touch:    interact.NewTouch(cfg.LongPress, cfg.DragThreshold),
		over:     interact.NewHighlights(cfg.HoverFade),
		down:     interact.NewHighlights(cfg.HoverFade),
		radial:   progress.NewRadial(cfg.RadialFade),
		toast:    progress.NewToast(cfg.Toast),
	}
	v.cursor = nav.NewCursor(v.pager, cfg.AutoAdvance)
	return v, nil
}

// Open shows item inside the overview of scope. A zero scope opens the item
// standalone. Any previous sequence, pending request and gesture is dropped.
func (v *Viewer) Open(scope types.Scope, item types.MediaItemRef) error {
	if err := item.Validate(); err != nil {
		return err
	}
	now := v.clock.Now()
	v.reset(now)
	v.open = true
	v.log = v.baseLog.WithScope(scope)

	if scope.IsZero() {
		v.pager.Reset(scope, nil)
		v.cursor.JumpToStandalone(item)
	} else {
		v.pager.Reset(scope, &item)
		v.cursor.Attach(&item)
	}
	v.docLoaded = item.Kind == types.MediaKindPhoto
	v.chrome = interact.NewChrome(now, v.cfg.Chrome)

	v.log.Info("viewer opened", map[string]any{
		"message_id": item.MessageID,
		"kind":       string(item.Kind),
		"standalone": scope.IsZero(),
	})

	v.preload()
	v.refresh(now)
	return nil
}

// OpenStandalone shows a single item with no overview.
func (v *Viewer) OpenStandalone(item types.MediaItemRef) error {
	return v.Open(types.Scope{}, item)
}

// Close tears the viewer down. Responses to requests issued before Close
// are stale afterwards.
func (v *Viewer) Close() {
	if !v.open {
		return
	}
	v.reset(v.clock.Now())
	v.pager.Reset(types.Scope{}, nil)
	v.cursor.Attach(nil)
	v.open = false
	v.log.Info("viewer closed", nil)
	v.changed()
}

// IsOpen reports whether the viewer is showing something.
func (v *Viewer) IsOpen() bool { return v.open }

// reset drops per-session interaction state and timers.
func (v *Viewer) reset(now time.Time) {
	if v.gesture.Active() {
		v.gesture.Abort()
		v.metrics.IncGestureAborted()
	}
	if v.touch.Active() {
		v.touch.End()
	}
	v.cancelTimer(&v.longPressTimer)
	v.cancelTimer(&v.hideTimer)
	v.cancelTimer(&v.toastTimer)
	v.hideArmedAt = time.Time{}
	v.toastArmedAt = time.Time{}
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	v.outbox = nil
	v.navDelta = 0
	v.over.Clear()
	v.down.Clear()
	v.hover = State{Region: types.RegionNone, Since: now}
	v.dropdown = false
	v.radial = progress.NewRadial(v.cfg.RadialFade)
	v.toast.Hide()
	v.zoom.Reset()
}

// MoveBy moves the cursor by delta. Pending results have already queued
// their page request in the outbox.
func (v *Viewer) MoveBy(delta int) nav.Result {
	if !v.open {
		return nav.Result{Outcome: nav.NoSuchItem}
	}
	v.navDelta = 0
	prev, _ := v.cursor.Current()
	res := v.cursor.MoveBy(delta)
	v.afterMove(res, prev)
	return res
}

func (v *Viewer) afterMove(res nav.Result, prev types.MediaItemRef) {
	switch res.Outcome {
	case nav.Moved:
		if res.Item.MessageID != prev.MessageID {
			v.metrics.IncNavigation()
			v.itemChanged(res.Item)
		}
	case nav.Pending:
		v.metrics.IncDeferredMove()
		v.dispatch(res.Request, res.Issued)
	}
	v.preload()
	v.refresh(v.clock.Now())
}

// itemChanged resets per-item state after the cursor lands on item.
func (v *Viewer) itemChanged(item types.MediaItemRef) {
	v.zoom.Reset()
	if v.radial.Active() || v.radial.Visible() {
		v.radial = progress.NewRadial(v.cfg.RadialFade)
	}
	v.docLoaded = item.Kind == types.MediaKindPhoto
}

// Preload requests the page a move by delta would need without moving.
func (v *Viewer) Preload(delta int) {
	if !v.open {
		return
	}
	if req, issued := v.cursor.Preload(delta); issued {
		v.dispatch(req, true)
	}
}

// preload keeps the next page warm once the cursor is within the preload
// margin of a loaded boundary.
func (v *Viewer) preload() {
	if v.cursor.Standalone() || v.cfg.PreloadMargin < 0 {
		return
	}
	pos := v.cursor.Position()
	if pos < 0 {
		return
	}
	n := v.pager.Sequence().Len()
	if pos <= v.cfg.PreloadMargin {
		v.Preload(-(pos + 1))
	}
	if n-1-pos <= v.cfg.PreloadMargin {
		v.Preload(n - pos)
	}
}

func (v *Viewer) dispatch(req overview.Request, issued bool) {
	if !issued {
		v.metrics.IncRequestAlreadyPending()
		return
	}
	v.metrics.IncRequestIssued()
	v.outbox = append(v.outbox, req)
	v.log.Debug("page requested", map[string]any{
		"request_id": req.ID,
		"direction":  req.Direction.String(),
		"cursor":     req.Cursor,
		"limit":      req.Limit,
	})
}

// TakeRequests returns and clears the requests the transport must fetch.
func (v *Viewer) TakeRequests() []overview.Request {
	out := v.outbox
	v.outbox = nil
	return out
}

// HandlePage applies the response to req. It returns false when the
// response is stale and was dropped.
func (v *Viewer) HandlePage(req overview.Request, page overview.Page) bool {
	prev, _ := v.cursor.Current()
	added, ok := v.pager.Extend(req, page)
	if !ok {
		v.metrics.IncStalePageDropped()
		v.log.Debug("stale page dropped", map[string]any{
			"request_id": req.ID,
			"scope":      req.Scope.Key(),
		})
		return false
	}
	v.metrics.AddPageApplied(added)
	v.log.Debug("page applied", map[string]any{
		"request_id": req.ID,
		"direction":  req.Direction.String(),
		"added":      added,
		"has_more":   v.pager.Sequence().HasMore(req.Direction),
	})
	v.resolve(req.Direction, prev)
	return true
}

// HandleFailure resolves req as a transport failure: the direction counts
// as exhausted. It returns false when the request was already stale.
func (v *Viewer) HandleFailure(req overview.Request, err error) bool {
	prev, _ := v.cursor.Current()
	if !v.pager.Fail(req) {
		v.metrics.IncStalePageDropped()
		return false
	}
	v.metrics.IncFetchFailure()
	v.log.Warn("page fetch failed", map[string]any{
		"request_id": req.ID,
		"direction":  req.Direction.String(),
		"error":      errString(err),
	})
	v.resolve(req.Direction, prev)
	return true
}

func (v *Viewer) resolve(dir types.Direction, prev types.MediaItemRef) {
	cur, _ := v.cursor.Current()
	res := v.cursor.Resolved(dir)
	if res.Outcome == nav.Moved && res.Item.MessageID != cur.MessageID {
		v.metrics.IncAutoAdvance()
	}
	v.afterMove(res, prev)
	if res.Outcome == nav.Moved && v.navDelta != 0 {
		v.emit(types.ActionNavigate, v.navDelta)
	}
	if !v.cursor.HasDeferred() {
		v.navDelta = 0
	}
}

// ChangeMessageID follows a message that received a new id.
func (v *Viewer) ChangeMessageID(oldID, newID int64) {
	if !v.open || oldID == newID {
		return
	}
	v.pager.ChangeMessageID(oldID, newID)
	v.cursor.Rekey(oldID, newID)
	v.changed()
}

// OverviewUpdated replaces the loaded items of the active scope with a
// list learned elsewhere. The cursor stays on its current message when it
// is still present.
func (v *Viewer) OverviewUpdated(scope types.Scope, items []types.MediaItemRef, hasMoreBefore, hasMoreAfter bool) bool {
	if !v.open {
		return false
	}
	prev, _ := v.cursor.Current()
	if !v.pager.Replace(scope, items, hasMoreBefore, hasMoreAfter) {
		return false
	}
	for _, d := range []types.Direction{types.Before, types.After} {
		if v.cursor.HasDeferred() {
			v.resolve(d, prev)
		}
	}
	if cur, ok := v.cursor.Current(); ok && cur.MessageID != prev.MessageID {
		v.itemChanged(cur)
	}
	v.preload()
	v.refresh(v.clock.Now())
	return true
}

// emit fires action for the current item.
func (v *Viewer) emit(action types.Action, delta int) {
	item, _ := v.Current()
	v.metrics.IncAction(string(action))
	v.log.Debug("action", map[string]any{
		"action":     string(action),
		"message_id": item.MessageID,
	})
	if v.onAction != nil {
		v.onAction(types.ActionEvent{
			Action: action,
			Item:   item,
			Scope:  v.pager.Sequence().Scope(),
			Delta:  delta,
		})
	}
}

// Trigger fires action for the current item, as menus and shortcuts do.
// Navigation and document actions go through the same paths as clicks.
func (v *Viewer) Trigger(action types.Action) {
	if !v.open {
		return
	}
	v.activity(v.clock.Now())
	switch action {
	case types.ActionOpenDocument, types.ActionDownload:
		v.clickIcon()
	case types.ActionOpenOverview:
		if !v.cursor.Standalone() {
			v.emit(action, 0)
		}
	default:
		v.emit(action, 0)
	}
	v.refresh(v.clock.Now())
}

// navigate moves by delta on behalf of the user and notifies the chrome
// layer when the move lands, now or once the page it waits for arrives.
func (v *Viewer) navigate(delta int) {
	res := v.MoveBy(delta)
	switch res.Outcome {
	case nav.Moved:
		v.emit(types.ActionNavigate, delta)
	case nav.Pending:
		v.navDelta = delta
	}
}

// DocumentProgress reports download progress for the current document.
func (v *Viewer) DocumentProgress(fraction float64) {
	if !v.open {
		return
	}
	v.radial.Update(v.clock.Now(), fraction)
	v.refresh(v.clock.Now())
}

// DocumentComplete marks the current document as loaded.
func (v *Viewer) DocumentComplete() {
	if !v.open {
		return
	}
	v.docLoaded = true
	v.radial.Complete(v.clock.Now())
	v.refresh(v.clock.Now())
}

// ShowSaved shows the save-confirmation toast.
func (v *Viewer) ShowSaved(name string) {
	if !v.open {
		return
	}
	v.toast.Show(v.clock.Now(), "Saved "+name)
	v.refresh(v.clock.Now())
}

// SetDropdownOpen holds the chrome while the chrome layer's menu is open.
func (v *Viewer) SetDropdownOpen(open bool) {
	if !v.open {
		return
	}
	v.dropdown = open
	v.refresh(v.clock.Now())
}

// refresh re-derives holds and visibility, steps timed state, arms timers
// and notifies the renderer.
func (v *Viewer) refresh(now time.Time) {
	if v.open {
		v.chrome.SetHeld(now, v.dropdown || v.hover.Region.Interactive())
		v.applyVisibility()
		v.schedule(now)
	}
	v.changed()
}

func (v *Viewer) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}

func (v *Viewer) cancelTimer(stop *func()) {
	if *stop != nil {
		(*stop)()
		*stop = nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
