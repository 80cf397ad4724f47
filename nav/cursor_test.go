package nav

import (
	"testing"

	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

var peer = types.Scope{Kind: types.ScopePeerPhotos, PeerID: 42}

func photo(msgID int64) types.MediaItemRef {
	return types.MediaItemRef{Kind: types.MediaKindPhoto, ItemID: msgID * 10, MessageID: msgID, Index: -1}
}

func photos(ids ...int64) []types.MediaItemRef {
	out := make([]types.MediaItemRef, len(ids))
	for i, id := range ids {
		out[i] = photo(id)
	}
	return out
}

// loaded builds a cursor over a fully known sequence at position pos.
func loaded(t *testing.T, ids []int64, hasBefore, hasAfter bool, pos int, autoAdvance bool) (*Cursor, *overview.Pager) {
	t.Helper()
	p := overview.NewPager(10)
	seed := photo(ids[pos])
	p.Reset(peer, &seed)
	if !p.Replace(peer, photos(ids...), hasBefore, hasAfter) {
		t.Fatal("Replace failed")
	}
	c := NewCursor(p, autoAdvance)
	c.Attach(&seed)
	if got := c.Position(); got != pos {
		t.Fatalf("initial position = %d, want %d", got, pos)
	}
	return c, p
}

func TestCursor_AttachCentersOnSeed(t *testing.T) {
	c, _ := loaded(t, []int64{1, 2, 3, 4, 5}, false, false, 2, true)
	item, ok := c.Current()
	if !ok || item.MessageID != 3 {
		t.Errorf("Current = %v, %v", item, ok)
	}
}

func TestCursor_AttachWithoutSeedStartsAtZero(t *testing.T) {
	p := overview.NewPager(10)
	p.Reset(peer, nil)
	p.Replace(peer, photos(5, 6), false, false)
	c := NewCursor(p, true)
	c.Attach(nil)
	if c.Position() != 0 {
		t.Errorf("Position = %d, want 0", c.Position())
	}
}

func TestCursor_MoveWithinBounds(t *testing.T) {
	c, _ := loaded(t, []int64{1, 2, 3, 4, 5}, false, false, 2, true)

	res := c.MoveBy(1)
	if res.Outcome != Moved || res.Item.MessageID != 4 {
		t.Fatalf("MoveBy(1) = %+v", res)
	}
	res = c.MoveBy(-3)
	if res.Outcome != Moved || res.Item.MessageID != 1 || c.Position() != 0 {
		t.Fatalf("MoveBy(-3) = %+v at %d", res, c.Position())
	}
}

func TestCursor_ClampsAtTrueEdgeWithoutFetch(t *testing.T) {
	c, p := loaded(t, []int64{1, 2, 3, 4, 5}, false, false, 0, true)

	res := c.MoveBy(10)
	if res.Outcome != Moved {
		t.Fatalf("MoveBy(10) outcome = %v, want moved", res.Outcome)
	}
	if c.Position() != 4 {
		t.Errorf("Position = %d, want 4", c.Position())
	}
	if _, pending := p.Pending(types.After); pending {
		t.Error("fetch issued at a true edge")
	}

	res = c.MoveBy(1)
	if res.Outcome != NoSuchItem || res.Issued {
		t.Errorf("MoveBy(1) at edge = %+v, want no_such_item", res)
	}
	if c.Position() != 4 {
		t.Errorf("Position moved to %d", c.Position())
	}
}

func TestCursor_PositionNeverLeavesBounds(t *testing.T) {
	c, _ := loaded(t, []int64{1, 2, 3, 4, 5}, false, false, 2, true)
	for _, d := range []int{7, -1, -9, 3, 2, -100, 100, 0, -2} {
		c.MoveBy(d)
		if pos := c.Position(); pos < 0 || pos >= 5 {
			t.Fatalf("after MoveBy(%d) position = %d", d, pos)
		}
	}
}

func TestCursor_SingleItemHasNoNeighbours(t *testing.T) {
	c, _ := loaded(t, []int64{9}, false, false, 0, true)
	if c.CanMove(1) || c.CanMove(-1) {
		t.Error("single item sequence allows navigation")
	}
	if res := c.MoveBy(1); res.Outcome != NoSuchItem {
		t.Errorf("MoveBy(1) = %v", res.Outcome)
	}
	if res := c.MoveBy(-1); res.Outcome != NoSuchItem {
		t.Errorf("MoveBy(-1) = %v", res.Outcome)
	}
}

func TestCursor_PastLoadedBoundaryRequests(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, false, 0, true)

	res := c.MoveBy(-1)
	if res.Outcome != Pending || !res.Issued {
		t.Fatalf("MoveBy(-1) = %+v, want issued pending", res)
	}
	if res.Request.Direction != types.Before || res.Request.Cursor != 10 {
		t.Errorf("request = %+v", res.Request)
	}
	if c.Position() != 0 {
		t.Errorf("position changed to %d while pending", c.Position())
	}

	again := c.MoveBy(-1)
	if again.Outcome != Pending || again.Issued {
		t.Errorf("second MoveBy(-1) = %+v, want pending without a new request", again)
	}
	if again.Request.ID != res.Request.ID {
		t.Error("second move produced a different request")
	}
	if _, ok := p.Pending(types.Before); !ok {
		t.Error("no pending request recorded")
	}
}

func TestCursor_AutoAdvanceOnArrival(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, false, 0, true)
	res := c.MoveBy(-1)

	p.Extend(res.Request, overview.Page{Items: photos(5, 7), HasMore: true})
	got := c.Resolved(types.Before)

	if got.Outcome != Moved || got.Item.MessageID != 7 {
		t.Fatalf("Resolved = %+v, want moved to 7", got)
	}
	if c.Position() != 1 {
		t.Errorf("Position = %d, want 1", c.Position())
	}
	if c.HasDeferred() {
		t.Error("deferred move not cleared")
	}
}

func TestCursor_NoAutoAdvanceAfterUserMoved(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, false, 0, true)
	res := c.MoveBy(-1)

	c.MoveBy(2) // user navigates elsewhere meanwhile

	p.Extend(res.Request, overview.Page{Items: photos(5), HasMore: true})
	got := c.Resolved(types.Before)

	if got.Outcome != NoSuchItem {
		t.Fatalf("Resolved = %+v, want no auto-advance", got)
	}
	item, _ := c.Current()
	if item.MessageID != 30 {
		t.Errorf("Current = %d, want 30", item.MessageID)
	}
}

func TestCursor_AutoAdvanceDisabled(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, false, 0, false)
	res := c.MoveBy(-1)

	p.Extend(res.Request, overview.Page{Items: photos(5), HasMore: true})
	if got := c.Resolved(types.Before); got.Outcome != NoSuchItem {
		t.Fatalf("Resolved = %+v, want no auto-advance", got)
	}
	item, _ := c.Current()
	if item.MessageID != 10 {
		t.Errorf("Current = %d, want 10 (position re-synced after prepend)", item.MessageID)
	}
	if c.Position() != 1 {
		t.Errorf("Position = %d, want 1", c.Position())
	}

	// The caller re-issues the move itself.
	if again := c.MoveBy(-1); again.Outcome != Moved || again.Item.MessageID != 5 {
		t.Errorf("re-issued MoveBy = %+v", again)
	}
}

func TestCursor_ResolvedAfterFailureClampsOrStops(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, false, 0, true)
	res := c.MoveBy(-1)

	p.Fail(res.Request)
	got := c.Resolved(types.Before)
	if got.Outcome != NoSuchItem {
		t.Errorf("Resolved after failure = %+v", got)
	}
	if c.CanMove(-1) {
		t.Error("navigation still enabled after failure at the edge")
	}
}

func TestCursor_ResolvedOtherDirectionKeepsDeferred(t *testing.T) {
	c, _ := loaded(t, []int64{10, 20, 30}, true, true, 0, true)
	c.MoveBy(-1)
	if got := c.Resolved(types.After); got.Outcome != NoSuchItem {
		t.Errorf("Resolved(after) = %+v", got)
	}
	if !c.HasDeferred() {
		t.Error("deferred move for the other direction was dropped")
	}
}

func TestCursor_Preload(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, true, true, 1, true)

	if _, issued := c.Preload(1); issued {
		t.Error("preload inside loaded range issued a request")
	}
	req, issued := c.Preload(2)
	if !issued || req.Direction != types.After {
		t.Fatalf("Preload(2) = %+v, %v", req, issued)
	}
	if _, issued := c.Preload(2); issued {
		t.Error("second preload issued a duplicate request")
	}
	if c.Position() != 1 || c.HasDeferred() {
		t.Error("preload changed cursor state")
	}
	if _, ok := p.Pending(types.After); !ok {
		t.Error("preload request not pending")
	}
}

func TestCursor_Standalone(t *testing.T) {
	c, _ := loaded(t, []int64{10, 20, 30}, true, true, 1, true)
	item := photo(99)
	c.JumpToStandalone(item)

	if !c.Standalone() || c.Position() != -1 {
		t.Fatal("cursor not standalone")
	}
	cur, ok := c.Current()
	if !ok || cur != item {
		t.Errorf("Current = %v", cur)
	}
	if res := c.MoveBy(1); res.Outcome != NoSuchItem {
		t.Errorf("standalone MoveBy = %v", res.Outcome)
	}
	if c.CanMove(-1) {
		t.Error("standalone cursor can move")
	}
}

func TestCursor_ForcedReseatAfterReset(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, false, false, 2, true)

	other := types.Scope{Kind: types.ScopeHistoryFiles, PeerID: 1}
	p.Reset(other, nil)
	p.Replace(other, photos(100, 200), false, false)

	item, ok := c.Current()
	if !ok || item.MessageID != 100 {
		t.Errorf("Current after reset = %v, %v; want first item of new sequence", item, ok)
	}
}

func TestCursor_Rekey(t *testing.T) {
	c, p := loaded(t, []int64{10, 20, 30}, false, false, 1, true)
	p.ChangeMessageID(20, 25)
	c.Rekey(20, 25)

	item, _ := c.Current()
	if item.MessageID != 25 || c.Position() != 1 {
		t.Errorf("Current = %v at %d", item, c.Position())
	}
}
