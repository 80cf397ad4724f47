package overview

import (
	"context"
	"errors"

	"github.com/pithecene-io/lightbox/types"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 50

// ErrUnknownScope is returned by fetchers that hold no media for a scope.
var ErrUnknownScope = errors.New("unknown scope")

// Request is one page fetch issued by the Pager. Responses are matched back
// to the Pager by ID and Scope.
type Request struct {
	ID        uint64          `json:"id" msgpack:"id"`
	Scope     types.Scope     `json:"scope" msgpack:"scope"`
	Direction types.Direction `json:"direction" msgpack:"direction"`
	// Cursor is the boundary message id to page from; 0 starts at the
	// newest item.
	Cursor int64 `json:"cursor" msgpack:"cursor"`
	Limit  int   `json:"limit" msgpack:"limit"`
}

// Page is a fetch response in ascending server order.
type Page struct {
	Items   []types.MediaItemRef `json:"items" msgpack:"items"`
	HasMore bool                 `json:"has_more" msgpack:"has_more"`
}

// Fetcher is the consumed paged-fetch capability.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (Page, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, req Request) (Page, error) {
	return f(ctx, req)
}

// RequestStatus is the outcome of RequestMore.
type RequestStatus int

const (
	// Issued means a new request was recorded and must be dispatched.
	Issued RequestStatus = iota
	// AlreadyPending means a request for that direction is in flight.
	AlreadyPending
	// Exhausted means the sequence is at its true edge in that direction.
	Exhausted
)

func (s RequestStatus) String() string {
	switch s {
	case Issued:
		return "issued"
	case AlreadyPending:
		return "already_pending"
	default:
		return "exhausted"
	}
}

// Pager extends the current Sequence with at most one in-flight request per
// direction. It is not safe for concurrent use; responses must be fed back
// on the owning thread.
type Pager struct {
	pageSize   int
	seq        *Sequence
	pending    [2]*Request
	nextID     uint64
	generation uint64
}

// NewPager creates a pager with an empty standalone sequence.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := &Pager{pageSize: pageSize}
	p.seq = &Sequence{}
	return p
}

// Sequence returns the current sequence.
func (p *Pager) Sequence() *Sequence { return p.seq }

// Reset replaces the sequence with a new one for scope. A seed becomes the
// only loaded item; without a seed the sequence starts empty and pages from
// the newest item. Pending requests for the old sequence become stale.
func (p *Pager) Reset(scope types.Scope, seed *types.MediaItemRef) *Sequence {
	p.generation++
	p.pending = [2]*Request{}
	seq := &Sequence{scope: scope, generation: p.generation}
	if !scope.IsZero() {
		seq.hasMoreBefore = true
		seq.hasMoreAfter = seed != nil
	}
	if seed != nil {
		seq.items = []types.MediaItemRef{*seed}
	}
	p.seq = seq
	return seq
}

// RequestMore records a fetch for direction d and returns it for dispatch.
func (p *Pager) RequestMore(d types.Direction) (Request, RequestStatus) {
	if p.pending[d] != nil {
		return *p.pending[d], AlreadyPending
	}
	if p.seq.scope.IsZero() || !p.seq.HasMore(d) {
		return Request{}, Exhausted
	}
	p.nextID++
	req := &Request{
		ID:        p.nextID,
		Scope:     p.seq.scope,
		Direction: d,
		Cursor:    p.seq.boundary(d),
		Limit:     p.pageSize,
	}
	p.pending[d] = req
	return *req, Issued
}

// Pending returns the in-flight request for direction d, if any.
func (p *Pager) Pending(d types.Direction) (Request, bool) {
	if p.pending[d] == nil {
		return Request{}, false
	}
	return *p.pending[d], true
}

// IsCurrent reports whether req is still the pending request for its
// direction and scope.
func (p *Pager) IsCurrent(req Request) bool {
	if req.Direction != types.Before && req.Direction != types.After {
		return false
	}
	cur := p.pending[req.Direction]
	return cur != nil && cur.ID == req.ID && req.Scope == p.seq.scope
}

// Extend applies a page for req. It returns the number of items added and
// false when req is stale, in which case nothing changes.
//
// A page that adds nothing ends paging in that direction even if the server
// claims more, so a misbehaving backend cannot cause a request loop.
func (p *Pager) Extend(req Request, page Page) (int, bool) {
	if !p.IsCurrent(req) {
		return 0, false
	}
	p.pending[req.Direction] = nil
	added := p.seq.merge(req.Direction, page.Items)
	p.seq.setHasMore(req.Direction, page.HasMore && added > 0)
	return added, true
}

// Fail resolves req as a transport failure: the direction is treated as
// exhausted. Returns false for stale requests.
func (p *Pager) Fail(req Request) bool {
	if !p.IsCurrent(req) {
		return false
	}
	p.pending[req.Direction] = nil
	p.seq.setHasMore(req.Direction, false)
	return true
}

// Replace swaps the loaded items of the current scope, for when the caller
// learns the overview from elsewhere. Pending requests become stale since
// their cursors refer to the old boundaries.
func (p *Pager) Replace(scope types.Scope, items []types.MediaItemRef, hasMoreBefore, hasMoreAfter bool) bool {
	if scope != p.seq.scope || scope.IsZero() {
		return false
	}
	p.pending = [2]*Request{}
	p.seq.replace(items, hasMoreBefore, hasMoreAfter)
	return true
}

// ChangeMessageID re-keys a loaded item whose message received a new id.
func (p *Pager) ChangeMessageID(oldID, newID int64) bool {
	return p.seq.rekey(oldID, newID)
}
