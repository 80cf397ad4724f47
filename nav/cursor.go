// Package nav tracks the viewer's position inside the current overview
// sequence, or a standalone item when there is no overview.
package nav

import (
	"weak"

	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

// Outcome discriminates MoveBy results.
type Outcome int

const (
	// Moved means the cursor now points at Result.Item.
	Moved Outcome = iota
	// Pending means the target is not loaded yet; a page was requested.
	Pending
	// NoSuchItem means there is nothing in that direction.
	NoSuchItem
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Pending:
		return "pending"
	default:
		return "no_such_item"
	}
}

// Result is the outcome of a navigation call.
type Result struct {
	Outcome Outcome
	Item    types.MediaItemRef
	// Request is the page request backing a Pending result.
	Request overview.Request
	// Issued is true when Request is new and must be dispatched; false
	// when it was already in flight.
	Issued bool
}

type deferredMove struct {
	direction types.Direction
	delta     int
	anchor    int64
}

// Cursor is a position in the pager's current sequence. It holds only a
// weak reference to the sequence; the pager owns it. When the sequence it
// was bound to is gone or replaced, the cursor re-seats at the start of the
// current one.
type Cursor struct {
	pager       *overview.Pager
	seq         weak.Pointer[overview.Sequence]
	position    int
	messageID   int64
	standalone  *types.MediaItemRef
	deferred    *deferredMove
	autoAdvance bool
}

// NewCursor creates a cursor over pager. With autoAdvance set, a move
// deferred for a page is re-applied when the page arrives, provided the
// cursor has not moved since.
func NewCursor(pager *overview.Pager, autoAdvance bool) *Cursor {
	c := &Cursor{pager: pager, autoAdvance: autoAdvance, position: -1}
	return c
}

// Attach binds the cursor to the pager's current sequence and centers it on
// seed, or on the first item when seed is nil or not loaded.
func (c *Cursor) Attach(seed *types.MediaItemRef) {
	seq := c.pager.Sequence()
	c.seq = weak.Make(seq)
	c.standalone = nil
	c.deferred = nil
	c.position = -1
	c.messageID = 0
	if seed != nil {
		if i, ok := seq.IndexOf(seed.MessageID); ok {
			c.setPosition(seq, i)
			return
		}
	}
	if seq.Len() > 0 {
		c.setPosition(seq, 0)
	}
}

// JumpToStandalone detaches the cursor from any sequence and shows item.
func (c *Cursor) JumpToStandalone(item types.MediaItemRef) {
	c.seq = weak.Pointer[overview.Sequence]{}
	c.standalone = &item
	c.deferred = nil
	c.position = -1
	c.messageID = item.MessageID
}

// Standalone reports whether the cursor is in standalone mode.
func (c *Cursor) Standalone() bool { return c.standalone != nil }

// Position returns the index in the sequence, or -1 in standalone mode or
// when nothing is loaded.
func (c *Cursor) Position() int {
	if c.standalone != nil {
		return -1
	}
	c.sync()
	return c.position
}

// Current returns the item under the cursor.
func (c *Cursor) Current() (types.MediaItemRef, bool) {
	if c.standalone != nil {
		return *c.standalone, true
	}
	seq := c.sync()
	if seq == nil || c.position < 0 {
		return types.MediaItemRef{}, false
	}
	return seq.At(c.position), true
}

// HasDeferred reports whether a move is waiting for a page.
func (c *Cursor) HasDeferred() bool { return c.deferred != nil }

// CanMove reports whether a move by delta could succeed now or after
// loading more items.
func (c *Cursor) CanMove(delta int) bool {
	if c.standalone != nil || delta == 0 {
		return false
	}
	seq := c.sync()
	if seq == nil || c.position < 0 {
		return false
	}
	target := c.position + delta
	if target >= 0 && target < seq.Len() {
		return true
	}
	return seq.HasMore(types.DirectionOf(delta))
}

// MoveBy moves the cursor by delta items.
//
// In range, the move is immediate. Past a loaded boundary with more items on
// the server, a page is requested and the result is Pending. Past the true
// edge, the cursor clamps to the edge item; if it is already there the
// result is NoSuchItem.
func (c *Cursor) MoveBy(delta int) Result {
	if c.standalone != nil {
		return Result{Outcome: NoSuchItem}
	}
	seq := c.sync()
	if seq == nil || c.position < 0 {
		return Result{Outcome: NoSuchItem}
	}
	if delta == 0 {
		return Result{Outcome: Moved, Item: seq.At(c.position)}
	}

	target := c.position + delta
	n := seq.Len()
	if target >= 0 && target < n {
		c.deferred = nil
		c.setPosition(seq, target)
		return Result{Outcome: Moved, Item: seq.At(target)}
	}

	dir := types.DirectionOf(delta)
	if seq.HasMore(dir) {
		req, status := c.pager.RequestMore(dir)
		if status != overview.Exhausted {
			c.deferred = &deferredMove{direction: dir, delta: delta, anchor: c.messageID}
			return Result{Outcome: Pending, Request: req, Issued: status == overview.Issued}
		}
	}

	edge := 0
	if dir == types.After {
		edge = n - 1
	}
	c.deferred = nil
	if edge == c.position {
		return Result{Outcome: NoSuchItem}
	}
	c.setPosition(seq, edge)
	return Result{Outcome: Moved, Item: seq.At(edge)}
}

// Preload requests the page a move by delta would need, without moving.
// It returns the request and true when a new request must be dispatched.
func (c *Cursor) Preload(delta int) (overview.Request, bool) {
	if c.standalone != nil || delta == 0 {
		return overview.Request{}, false
	}
	seq := c.sync()
	if seq == nil || c.position < 0 {
		return overview.Request{}, false
	}
	target := c.position + delta
	if target >= 0 && target < seq.Len() {
		return overview.Request{}, false
	}
	dir := types.DirectionOf(delta)
	if !seq.HasMore(dir) {
		return overview.Request{}, false
	}
	req, status := c.pager.RequestMore(dir)
	return req, status == overview.Issued
}

// Resolved must be called after a page for direction dir was applied or
// failed. It re-applies a deferred move in that direction when auto-advance
// is on and the cursor has not moved since the move was deferred.
func (c *Cursor) Resolved(dir types.Direction) Result {
	c.sync()
	d := c.deferred
	if d == nil || d.direction != dir {
		return Result{Outcome: NoSuchItem}
	}
	c.deferred = nil
	if !c.autoAdvance || d.anchor != c.messageID {
		return Result{Outcome: NoSuchItem}
	}
	return c.MoveBy(d.delta)
}

// Rekey follows a message id change of the current item.
func (c *Cursor) Rekey(oldID, newID int64) {
	if c.messageID != oldID {
		return
	}
	c.messageID = newID
	if c.standalone != nil {
		item := *c.standalone
		item.MessageID = newID
		c.standalone = &item
	}
	if c.deferred != nil && c.deferred.anchor == oldID {
		c.deferred.anchor = newID
	}
}

// sync re-derives the position from the current message id after the
// sequence was extended, replaced or reset. It returns the live sequence,
// or nil in standalone mode.
func (c *Cursor) sync() *overview.Sequence {
	if c.standalone != nil {
		return nil
	}
	cur := c.pager.Sequence()
	if seq := c.seq.Value(); seq == nil || seq != cur {
		c.seq = weak.Make(cur)
		c.deferred = nil
		c.position = -1
		c.messageID = 0
		if cur.Len() > 0 {
			c.setPosition(cur, 0)
		}
		return cur
	}
	if c.position < 0 {
		if cur.Len() > 0 {
			c.setPosition(cur, 0)
		}
		return cur
	}
	if i, ok := cur.IndexOf(c.messageID); ok {
		c.position = i
		return cur
	}
	// The current item disappeared (replaced overview); stay near it.
	if cur.Len() == 0 {
		c.position = -1
		c.messageID = 0
		return cur
	}
	c.setPosition(cur, min(c.position, cur.Len()-1))
	return cur
}

func (c *Cursor) setPosition(seq *overview.Sequence, i int) {
	c.position = i
	c.messageID = seq.At(i).MessageID
}
