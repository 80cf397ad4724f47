package viewer

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/pithecene-io/lightbox/clock"
	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/nav"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

var (
	t0    = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	peer  = types.Scope{Kind: types.ScopePeerPhotos, PeerID: 42}
	other = types.Scope{Kind: types.ScopePeerPhotos, PeerID: 7}
)

func photo(msgID int64) types.MediaItemRef {
	return types.MediaItemRef{Kind: types.MediaKindPhoto, ItemID: 1000 + msgID, MessageID: msgID, Index: -1}
}

func document(msgID int64) types.MediaItemRef {
	return types.MediaItemRef{Kind: types.MediaKindDocument, ItemID: 5000 + msgID, MessageID: msgID, Index: -1}
}

// server answers page requests over message ids 1..n.
type server struct{ n int64 }

func (s server) page(req overview.Request) overview.Page {
	var items []types.MediaItemRef
	switch req.Direction {
	case types.Before:
		hi := req.Cursor - 1
		if req.Cursor == 0 {
			hi = s.n
		}
		lo := max(1, hi-int64(req.Limit)+1)
		for id := lo; id <= hi; id++ {
			items = append(items, photo(id))
		}
		return overview.Page{Items: items, HasMore: lo > 1}
	default:
		lo := req.Cursor + 1
		hi := min(s.n, lo+int64(req.Limit)-1)
		for id := lo; id <= hi; id++ {
			items = append(items, photo(id))
		}
		return overview.Page{Items: items, HasMore: hi < s.n}
	}
}

type harness struct {
	t       *testing.T
	clock   *clock.Fake
	v       *Viewer
	metrics *metrics.Collector
	actions []types.ActionEvent
	changes int
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PageSize = 3
	cfg.PreloadMargin = 0
	if mutate != nil {
		mutate(&cfg)
	}
	h := &harness{t: t, clock: clock.NewFake(t0), metrics: metrics.NewCollector("local", "test")}
	v, err := New(cfg, Options{
		Clock:    h.clock,
		Metrics:  h.metrics,
		OnChange: func() { h.changes++ },
		OnAction: func(e types.ActionEvent) { h.actions = append(h.actions, e) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.v = v
	return h
}

// requests takes the outbox keyed by direction.
func (h *harness) requests() map[types.Direction]overview.Request {
	h.t.Helper()
	out := make(map[types.Direction]overview.Request)
	for _, r := range h.v.TakeRequests() {
		if _, dup := out[r.Direction]; dup {
			h.t.Fatalf("two requests for %v in one batch", r.Direction)
		}
		out[r.Direction] = r
	}
	return out
}

func (h *harness) current() int64 {
	h.t.Helper()
	item, ok := h.v.Current()
	if !ok {
		h.t.Fatal("no current item")
	}
	return item.MessageID
}

func (h *harness) actionNames() []types.Action {
	out := make([]types.Action, len(h.actions))
	for i, a := range h.actions {
		out[i] = a.Action
	}
	return out
}

func region(r types.Region, rect image.Rectangle) interact.Layout {
	var l interact.Layout
	l.Set(r, rect, true)
	return l
}

func TestNew_RequiresClock(t *testing.T) {
	if _, err := New(DefaultConfig(), Options{}); !errors.Is(err, ErrNoClock) {
		t.Fatalf("New without clock = %v, want ErrNoClock", err)
	}
}

func TestOpen_RequestsBothDirections(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.v.Open(peer, photo(10)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	reqs := h.requests()
	before, after := reqs[types.Before], reqs[types.After]
	if before.Cursor != 10 || after.Cursor != 10 {
		t.Errorf("cursors = %d/%d, want 10/10", before.Cursor, after.Cursor)
	}
	if before.Limit != 3 || before.Scope != peer {
		t.Errorf("before request = %+v", before)
	}
	if len(h.v.TakeRequests()) != 0 {
		t.Error("TakeRequests did not clear the outbox")
	}
	if phase, _ := h.v.ChromePhase(); phase != interact.Showing {
		t.Errorf("chrome phase = %v, want showing", phase)
	}
}

func TestOpen_InvalidItem(t *testing.T) {
	h := newHarness(t, nil)
	if err := h.v.Open(peer, types.MediaItemRef{Kind: "video", ItemID: 1}); err == nil {
		t.Fatal("Open accepted an invalid item")
	}
	if h.v.IsOpen() {
		t.Error("viewer open after failed Open")
	}
}

func TestPages_ExtendAndNavigate(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	for _, r := range reqs {
		if !h.v.HandlePage(r, srv.page(r)) {
			t.Fatalf("page for %v dropped", r.Direction)
		}
	}
	if got := h.v.Sequence().Len(); got != 7 {
		t.Fatalf("Len = %d, want 7", got)
	}
	if item, _ := h.v.Current(); item.MessageID != 10 || item.Index != 3 {
		t.Errorf("Current = %+v, want msg 10 at index 3", item)
	}

	if res := h.v.MoveBy(-2); res.Outcome != nav.Moved || res.Item.MessageID != 8 {
		t.Fatalf("MoveBy(-2) = %+v", res)
	}
	s := h.metrics.Snapshot()
	if s.PagesApplied != 2 || s.ItemsAdded != 6 || s.Navigations != 1 {
		t.Errorf("metrics = %+v", s)
	}
}

func TestPages_StaleAfterReopenDropped(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	old := h.requests()

	h.v.Open(other, photo(3))
	h.requests()
	if h.v.HandlePage(old[types.After], srv.page(old[types.After])) {
		t.Fatal("stale page applied")
	}
	if got := h.v.Sequence().Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
	if h.v.Scope() != other {
		t.Errorf("Scope = %v", h.v.Scope())
	}
	if h.metrics.Snapshot().StalePagesDropped != 1 {
		t.Error("stale drop not counted")
	}
}

func TestMoveBy_PendingAutoAdvances(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	res := h.v.MoveBy(1)
	if res.Outcome != nav.Pending || res.Issued {
		t.Fatalf("MoveBy(1) = %+v, want pending on the in-flight request", res)
	}
	if len(h.v.TakeRequests()) != 0 {
		t.Fatal("pending move issued a second request")
	}
	if !h.v.Loading() {
		t.Error("Loading = false while a move waits")
	}

	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	if got := h.current(); got != 11 {
		t.Fatalf("current = %d, want 11 after auto-advance", got)
	}
	s := h.metrics.Snapshot()
	if s.AutoAdvances != 1 || s.RequestsAlreadyPending != 1 {
		t.Errorf("metrics = %+v", s)
	}
}

func TestKey_NextAtLoadedEdgeNavigatesWhenPageArrives(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	h.v.Key(KeyNext)
	if got := h.current(); got != 10 {
		t.Fatalf("current = %d, want 10 while the page loads", got)
	}
	if len(h.actions) != 0 {
		t.Fatalf("actions = %v before the page arrived", h.actionNames())
	}

	h.v.HandlePage(reqs[types.Before], srv.page(reqs[types.Before]))
	if len(h.actions) != 0 {
		t.Fatalf("actions = %v after the other direction loaded", h.actionNames())
	}
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	if got := h.current(); got != 11 {
		t.Fatalf("current = %d, want 11", got)
	}
	if len(h.actions) != 1 || h.actions[0].Action != types.ActionNavigate || h.actions[0].Delta != 1 {
		t.Fatalf("actions = %+v, want one navigate by 1", h.actions)
	}
	if h.actions[0].Item.MessageID != 11 {
		t.Errorf("navigate item = %d, want 11", h.actions[0].Item.MessageID)
	}
}

func TestMoveBy_DeferredProgrammaticMoveEmitsNothing(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	h.v.Key(KeyNext)
	h.v.MoveBy(1)
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	if got := h.current(); got != 11 {
		t.Fatalf("current = %d, want 11", got)
	}
	if len(h.actions) != 0 {
		t.Errorf("actions = %v, want none for a programmatic move", h.actionNames())
	}
}

func TestKey_NextDroppedWhenPageFails(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	h.v.Key(KeyNext)
	h.v.HandleFailure(reqs[types.After], errors.New("offline"))
	if len(h.actions) != 0 {
		t.Fatalf("actions = %v, want none", h.actionNames())
	}
	h.v.HandlePage(reqs[types.Before], srv.page(reqs[types.Before]))
	h.v.Key(KeyPrev)
	if len(h.actions) != 1 || h.actions[0].Delta != -1 {
		t.Errorf("actions = %+v, want one navigate by -1", h.actions)
	}
}

func TestMoveBy_PendingWithoutAutoAdvance(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, func(c *Config) { c.AutoAdvance = false })
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	h.v.MoveBy(1)
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	if got := h.current(); got != 10 {
		t.Fatalf("current = %d, want 10", got)
	}
	if res := h.v.MoveBy(1); res.Outcome != nav.Moved || res.Item.MessageID != 11 {
		t.Errorf("re-issued MoveBy(1) = %+v", res)
	}
}

func TestMoveBy_NavigatedAwayDropsDeferredMove(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()
	h.v.HandlePage(reqs[types.Before], srv.page(reqs[types.Before]))

	h.v.MoveBy(1)
	if res := h.v.MoveBy(-1); res.Outcome != nav.Moved || res.Item.MessageID != 9 {
		t.Fatalf("MoveBy(-1) = %+v", res)
	}
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	if got := h.current(); got != 9 {
		t.Errorf("current = %d, want 9", got)
	}
}

func TestFetchFailure_DisablesDirection(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	if !h.v.HandleFailure(reqs[types.After], errors.New("transport closed")) {
		t.Fatal("failure for current request ignored")
	}
	if h.v.CanMove(1) {
		t.Error("CanMove(1) after failure")
	}
	if res := h.v.MoveBy(1); res.Outcome != nav.NoSuchItem {
		t.Errorf("MoveBy(1) = %+v, want no_such_item", res)
	}
	if len(h.v.TakeRequests()) != 0 {
		t.Error("failure caused a retry")
	}
	if h.v.HandleFailure(reqs[types.After], nil) {
		t.Error("second failure for the same request applied")
	}
}

func TestPreload_WithinMargin(t *testing.T) {
	srv := server{n: 30}
	h := newHarness(t, func(c *Config) { c.PreloadMargin = 1 })
	h.v.Open(peer, photo(10))
	reqs := h.requests()
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	h.v.HandleFailure(reqs[types.Before], nil)
	// Loaded 10..13, cursor on 10.
	if len(h.v.TakeRequests()) != 0 {
		t.Fatal("preloaded too early")
	}

	h.v.MoveBy(2)
	next := h.requests()
	r, ok := next[types.After]
	if !ok || r.Cursor != 13 {
		t.Fatalf("preload requests = %+v", next)
	}
	if h.current() != 12 {
		t.Errorf("preload moved the cursor to %d", h.current())
	}
}

func TestPreload_NegativeMarginDisables(t *testing.T) {
	srv := server{n: 30}
	h := newHarness(t, func(c *Config) { c.PreloadMargin = -1 })
	h.v.Open(peer, photo(10))
	reqs := h.requests()
	h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After]))
	h.v.HandleFailure(reqs[types.Before], nil)

	// Loaded 10..13; landing on the last loaded item requests nothing.
	h.v.MoveBy(3)
	if h.current() != 13 {
		t.Fatalf("current = %d, want 13", h.current())
	}
	if got := h.v.TakeRequests(); len(got) != 0 {
		t.Fatalf("requests = %+v, want none", got)
	}
	if res := h.v.MoveBy(1); res.Outcome != nav.Pending || !res.Issued {
		t.Errorf("MoveBy(1) = %+v, want a newly issued page", res)
	}
}

func TestStandalone_NeverRequests(t *testing.T) {
	h := newHarness(t, nil)
	h.v.OpenStandalone(photo(5))
	if reqs := h.v.TakeRequests(); len(reqs) != 0 {
		t.Fatalf("standalone requested %v", reqs)
	}
	if !h.v.Standalone() || h.v.CanMove(1) || h.v.CanMove(-1) {
		t.Error("standalone item allows navigation")
	}
	if item, ok := h.v.Current(); !ok || item.MessageID != 5 || item.Index != -1 {
		t.Errorf("Current = %+v, %v", item, ok)
	}
}

func TestChrome_HidesAfterInactivityAndFramesStop(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	if h.clock.Subscribers() != 1 {
		t.Fatalf("subscribers at open = %d, want 1", h.clock.Subscribers())
	}

	h.clock.Advance(200 * time.Millisecond)
	if phase, _ := h.v.ChromePhase(); phase != interact.Shown {
		t.Fatalf("phase = %v, want shown", phase)
	}
	if h.clock.Subscribers() != 0 {
		t.Error("frame subscription kept while idle")
	}

	h.clock.Advance(1800 * time.Millisecond)
	if phase, _ := h.v.ChromePhase(); phase != interact.Hiding {
		t.Fatalf("phase = %v, want hiding", phase)
	}
	if h.clock.Subscribers() != 1 {
		t.Error("no frame subscription while hiding")
	}

	h.clock.Advance(time.Second)
	if phase, _ := h.v.ChromePhase(); phase != interact.Hidden {
		t.Fatalf("phase = %v, want hidden", phase)
	}
	if h.clock.Subscribers() != 0 || h.clock.PendingTimers() != 0 {
		t.Errorf("idle viewer has %d subscribers and %d timers", h.clock.Subscribers(), h.clock.PendingTimers())
	}

	h.v.PointerMove(image.Pt(1, 1))
	if phase, _ := h.v.ChromePhase(); phase != interact.Showing {
		t.Errorf("phase after movement = %v, want showing", phase)
	}
}

func TestChrome_HeldWhileOverControl(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetLayout(region(types.RegionClose, image.Rect(90, 0, 100, 10)))

	h.v.PointerMove(image.Pt(95, 5))
	if h.v.Hovered().Region != types.RegionClose {
		t.Fatalf("hovered = %v", h.v.Hovered().Region)
	}
	h.clock.Advance(10 * time.Second)
	if phase, _ := h.v.ChromePhase(); phase != interact.Shown {
		t.Fatalf("phase = %v, want shown while hovering a control", phase)
	}
	if got := h.v.OverLevel(types.RegionClose); got != 1 {
		t.Errorf("OverLevel(close) = %v, want 1", got)
	}

	h.v.PointerMove(image.Pt(50, 50))
	h.clock.Advance(2 * time.Second)
	if phase, _ := h.v.ChromePhase(); phase != interact.Hiding {
		t.Errorf("phase = %v, want hiding after leaving the control", phase)
	}
}

func TestChrome_DropdownHolds(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetDropdownOpen(true)
	h.clock.Advance(time.Minute)
	if phase, _ := h.v.ChromePhase(); phase != interact.Shown {
		t.Fatalf("phase = %v, want shown", phase)
	}
	h.v.SetDropdownOpen(false)
	h.clock.Advance(2 * time.Second)
	if phase, _ := h.v.ChromePhase(); phase != interact.Hiding {
		t.Errorf("phase = %v, want hiding", phase)
	}
}

func TestClick_FiresOnceAndDragFiresNothing(t *testing.T) {
	save := image.Rect(0, 0, 40, 20)
	tests := []struct {
		name    string
		moveTo  image.Point
		wantHit bool
	}{
		{"click", image.Pt(12, 11), true},
		{"drag", image.Pt(35, 18), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.v.Open(peer, photo(10))
			h.v.SetLayout(region(types.RegionSave, save))

			h.v.PointerPress(image.Pt(10, 10))
			if h.v.Pressed().Region != types.RegionSave {
				t.Fatalf("pressed = %v", h.v.Pressed().Region)
			}
			h.v.PointerMove(tt.moveTo)
			h.v.PointerRelease(tt.moveTo)

			got := h.actionNames()
			if tt.wantHit {
				if len(got) != 1 || got[0] != types.ActionSave {
					t.Fatalf("actions = %v, want [save]", got)
				}
				if h.actions[0].Item.MessageID != 10 || h.actions[0].Scope != peer {
					t.Errorf("action event = %+v", h.actions[0])
				}
			} else if len(got) != 0 {
				t.Fatalf("actions = %v, want none", got)
			}
		})
	}
}

func TestClick_NavigationRegions(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	for _, r := range h.requests() {
		h.v.HandlePage(r, srv.page(r))
	}
	var l interact.Layout
	l.Set(types.RegionLeftNav, image.Rect(0, 0, 10, 100), true)
	l.Set(types.RegionRightNav, image.Rect(90, 0, 100, 100), true)
	h.v.SetLayout(l)

	h.v.PointerPress(image.Pt(95, 50))
	h.v.PointerRelease(image.Pt(95, 50))
	if got := h.current(); got != 11 {
		t.Fatalf("current = %d, want 11", got)
	}
	if len(h.actions) != 1 || h.actions[0].Action != types.ActionNavigate || h.actions[0].Delta != 1 {
		t.Errorf("actions = %+v", h.actions)
	}
}

func TestLayout_NavHiddenAtTrueEdge(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()
	h.v.HandlePage(reqs[types.After], overview.Page{Items: nil, HasMore: false})

	var l interact.Layout
	l.Set(types.RegionLeftNav, image.Rect(0, 0, 10, 100), true)
	l.Set(types.RegionRightNav, image.Rect(90, 0, 100, 100), true)
	h.v.SetLayout(l)
	if h.v.Visible(types.RegionRightNav) {
		t.Error("right navigation visible at the newest item")
	}
	if !h.v.Visible(types.RegionLeftNav) {
		t.Error("left navigation hidden while older items may exist")
	}

	h.v.PointerPress(image.Pt(95, 50))
	h.v.PointerRelease(image.Pt(95, 50))
	if len(h.actions) != 0 {
		t.Errorf("click on hidden region fired %v", h.actionNames())
	}
}

func TestGesture_AbortedByScopeReset(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetLayout(region(types.RegionSave, image.Rect(0, 0, 40, 20)))

	h.v.PointerPress(image.Pt(10, 10))
	h.v.Open(other, photo(3))
	h.v.PointerRelease(image.Pt(10, 10))

	if len(h.actions) != 0 {
		t.Fatalf("actions = %v, want none", h.actionNames())
	}
	if h.metrics.Snapshot().GesturesAborted != 1 {
		t.Error("aborted gesture not counted")
	}
}

func TestClick_EmptyAreaOutsideContentCloses(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetGeometry(image.Pt(100, 100), image.Pt(40, 20))

	h.v.PointerPress(image.Pt(50, 50))
	h.v.PointerRelease(image.Pt(50, 50))
	if len(h.actions) != 0 {
		t.Fatalf("click on content fired %v", h.actionNames())
	}

	h.v.PointerPress(image.Pt(5, 5))
	h.v.PointerRelease(image.Pt(5, 5))
	if got := h.actionNames(); len(got) != 1 || got[0] != types.ActionClose {
		t.Errorf("actions = %v, want [close]", got)
	}
}

func TestDrag_PansZoomedContent(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetGeometry(image.Pt(100, 100), image.Pt(200, 100))
	h.v.Key(KeyZoomIn)
	if h.v.ZoomLevel() != 0 {
		t.Fatalf("ZoomLevel = %d, want 0", h.v.ZoomLevel())
	}
	start := h.v.ContentBounds().Min

	h.v.PointerPress(image.Pt(50, 50))
	h.v.PointerMove(image.Pt(70, 50))
	h.v.PointerRelease(image.Pt(70, 50))

	if got := h.v.ContentBounds().Min; got.X != start.X+20 {
		t.Errorf("content moved from %v to %v, want +20 x", start, got)
	}
	if len(h.actions) != 0 {
		t.Errorf("drag fired %v", h.actionNames())
	}
	if h.metrics.Snapshot().Drags != 1 {
		t.Error("drag not counted")
	}
}

func TestWheel_CtrlZoomsOtherwiseNavigates(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	for _, r := range h.requests() {
		h.v.HandlePage(r, srv.page(r))
	}
	h.v.SetGeometry(image.Pt(100, 100), image.Pt(50, 50))

	h.v.Wheel(2, true)
	if h.v.ZoomLevel() != 2 {
		t.Errorf("ZoomLevel = %d, want 2", h.v.ZoomLevel())
	}
	h.v.Wheel(-1, false)
	if got := h.current(); got != 9 {
		t.Errorf("current = %d, want 9", got)
	}
}

func TestKeys(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))

	h.v.Key(KeySave)
	h.v.Key(KeyCopy)
	h.v.Key(KeyEscape)
	got := h.actionNames()
	want := []types.Action{types.ActionSave, types.ActionCopy, types.ActionClose}
	if len(got) != len(want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action %d = %v, want %v", i, got[i], want[i])
		}
	}

	h.v.Key(KeyHideChrome)
	if phase, _ := h.v.ChromePhase(); phase != interact.Hiding {
		t.Errorf("phase = %v, want hiding", phase)
	}
}

func TestDocument_DownloadThenOpen(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(types.Scope{Kind: types.ScopeHistoryFiles, PeerID: 42}, document(10))
	h.v.SetLayout(region(types.RegionIcon, image.Rect(40, 40, 60, 60)))

	h.v.PointerPress(image.Pt(50, 50))
	h.v.PointerRelease(image.Pt(50, 50))
	if got := h.actionNames(); len(got) != 1 || got[0] != types.ActionDownload {
		t.Fatalf("actions = %v, want [download]", got)
	}
	if d := h.v.Download(); !d.Visible || !d.Active || d.Opacity != 1 {
		t.Fatalf("download = %+v", d)
	}

	h.clock.Advance(100 * time.Millisecond)
	h.v.DocumentProgress(0.5)
	h.clock.Advance(100 * time.Millisecond)
	h.v.DocumentComplete()
	if !h.v.DocumentLoaded() {
		t.Fatal("document not loaded after completion")
	}

	h.clock.Advance(h.v.cfg.RadialFade)
	if d := h.v.Download(); d.Visible || d.Opacity != 0 {
		t.Errorf("download after fade = %+v", d)
	}

	h.v.PointerPress(image.Pt(50, 50))
	h.v.PointerRelease(image.Pt(50, 50))
	if got := h.actionNames(); got[len(got)-1] != types.ActionOpenDocument {
		t.Errorf("actions = %v, want open_document last", got)
	}
}

func TestTouch_LongPressOpensContextMenu(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetLayout(region(types.RegionSave, image.Rect(0, 0, 40, 20)))

	h.v.TouchBegin(image.Pt(10, 10))
	h.clock.Advance(h.v.cfg.LongPress)
	h.v.TouchEnd(image.Pt(10, 10))

	if got := h.actionNames(); len(got) != 1 || got[0] != types.ActionOpenContextMenu {
		t.Fatalf("actions = %v, want [open_context_menu]", got)
	}
}

func TestTouch_TapClicks(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.SetLayout(region(types.RegionSave, image.Rect(0, 0, 40, 20)))

	h.v.TouchBegin(image.Pt(10, 10))
	h.clock.Advance(100 * time.Millisecond)
	h.v.TouchEnd(image.Pt(11, 10))

	if got := h.actionNames(); len(got) != 1 || got[0] != types.ActionSave {
		t.Fatalf("actions = %v, want [save]", got)
	}
	if h.clock.PendingTimers() > 1 {
		t.Errorf("long-press timer left armed: %d timers", h.clock.PendingTimers())
	}
}

func TestTouch_MovedPressNeverLongPresses(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))

	h.v.TouchBegin(image.Pt(10, 10))
	h.v.TouchMove(image.Pt(40, 10))
	h.clock.Advance(time.Second)
	h.v.TouchEnd(image.Pt(40, 10))

	for _, a := range h.actions {
		if a.Action == types.ActionOpenContextMenu {
			t.Fatal("moved touch opened the context menu")
		}
	}
}

func TestShowSaved_ToastFadesAway(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.ShowSaved("photo_10.jpg")

	h.clock.Advance(200 * time.Millisecond)
	if text, op := h.v.Toast(); text != "Saved photo_10.jpg" || op != 1 {
		t.Fatalf("toast = %q @ %v", text, op)
	}
	h.clock.Advance(3 * time.Second)
	if text, _ := h.v.Toast(); text != "" {
		t.Errorf("toast still shown: %q", text)
	}
}

func TestChangeMessageID_FollowsCurrentItem(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.v.ChangeMessageID(10, 12)
	if got := h.current(); got != 12 {
		t.Errorf("current = %d, want 12", got)
	}
}

func TestOverviewUpdated_KeepsCurrentMessage(t *testing.T) {
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	h.requests()

	items := []types.MediaItemRef{photo(4), photo(8), photo(10), photo(15)}
	if !h.v.OverviewUpdated(peer, items, false, false) {
		t.Fatal("OverviewUpdated rejected the active scope")
	}
	if got := h.v.Position(); got != 2 {
		t.Errorf("Position = %d, want 2", got)
	}
	if h.v.OverviewUpdated(other, items, false, false) {
		t.Error("OverviewUpdated accepted another scope")
	}
}

func TestClose_DropsEverything(t *testing.T) {
	srv := server{n: 20}
	h := newHarness(t, nil)
	h.v.Open(peer, photo(10))
	reqs := h.requests()

	h.v.Close()
	if h.v.IsOpen() {
		t.Fatal("viewer still open")
	}
	if h.v.HandlePage(reqs[types.After], srv.page(reqs[types.After])) {
		t.Error("page applied after close")
	}
	if h.clock.Subscribers() != 0 || h.clock.PendingTimers() != 0 {
		t.Errorf("closed viewer has %d subscribers and %d timers", h.clock.Subscribers(), h.clock.PendingTimers())
	}
}
