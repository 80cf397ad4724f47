// Package metrics provides per-session counters for the viewer.
//
// The Collector accumulates counters during a single viewer session. It is a
// leaf package with no internal dependencies; action names are plain strings
// to keep it free of the types package.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Paging
	RequestsIssued         int64
	RequestsAlreadyPending int64
	PagesApplied           int64
	ItemsAdded             int64
	StalePagesDropped      int64
	FetchFailures          int64

	// Navigation
	Navigations   int64
	DeferredMoves int64
	AutoAdvances  int64

	// Interaction
	Clicks          int64
	Drags           int64
	LongPresses     int64
	ActionsFired    int64
	ActionsByType   map[string]int64
	GesturesAborted int64

	// Transport / adapters
	IPCDecodeErrors int64
	PublishSuccess  int64
	PublishFailure  int64

	// Dimensions (informational, set at construction)
	Transport string
	SessionID string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	requestsIssued         int64
	requestsAlreadyPending int64
	pagesApplied           int64
	itemsAdded             int64
	stalePagesDropped      int64
	fetchFailures          int64

	navigations   int64
	deferredMoves int64
	autoAdvances  int64

	clicks          int64
	drags           int64
	longPresses     int64
	actionsFired    int64
	actionsByType   map[string]int64
	gesturesAborted int64

	ipcDecodeErrors int64
	publishSuccess  int64
	publishFailure  int64

	transport string
	sessionID string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(transport, sessionID string) *Collector {
	return &Collector{
		actionsByType: make(map[string]int64),
		transport:     transport,
		sessionID:     sessionID,
	}
}

func (c *Collector) add(field *int64, n int64) {
	c.mu.Lock()
	*field += n
	c.mu.Unlock()
}

// --- Paging ---

// IncRequestIssued records a page request handed to the transport.
func (c *Collector) IncRequestIssued() {
	if c == nil {
		return
	}
	c.add(&c.requestsIssued, 1)
}

// IncRequestAlreadyPending records a request rejected because one was in flight.
func (c *Collector) IncRequestAlreadyPending() {
	if c == nil {
		return
	}
	c.add(&c.requestsAlreadyPending, 1)
}

// AddPageApplied records an applied page and the items it added.
func (c *Collector) AddPageApplied(items int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pagesApplied++
	c.itemsAdded += int64(items)
	c.mu.Unlock()
}

// IncStalePageDropped records a response dropped as stale.
func (c *Collector) IncStalePageDropped() {
	if c == nil {
		return
	}
	c.add(&c.stalePagesDropped, 1)
}

// IncFetchFailure records a transport failure.
func (c *Collector) IncFetchFailure() {
	if c == nil {
		return
	}
	c.add(&c.fetchFailures, 1)
}

// --- Navigation ---

// IncNavigation records a completed move.
func (c *Collector) IncNavigation() {
	if c == nil {
		return
	}
	c.add(&c.navigations, 1)
}

// IncDeferredMove records a move waiting for a page.
func (c *Collector) IncDeferredMove() {
	if c == nil {
		return
	}
	c.add(&c.deferredMoves, 1)
}

// IncAutoAdvance records a deferred move re-applied on page arrival.
func (c *Collector) IncAutoAdvance() {
	if c == nil {
		return
	}
	c.add(&c.autoAdvances, 1)
}

// --- Interaction ---

// IncClick records a resolved click.
func (c *Collector) IncClick() {
	if c == nil {
		return
	}
	c.add(&c.clicks, 1)
}

// IncDrag records a gesture that ended as a drag.
func (c *Collector) IncDrag() {
	if c == nil {
		return
	}
	c.add(&c.drags, 1)
}

// IncLongPress records a touch long press.
func (c *Collector) IncLongPress() {
	if c == nil {
		return
	}
	c.add(&c.longPresses, 1)
}

// IncGestureAborted records a gesture dropped because its target went away.
func (c *Collector) IncGestureAborted() {
	if c == nil {
		return
	}
	c.add(&c.gesturesAborted, 1)
}

// IncAction records a fired action by name.
func (c *Collector) IncAction(action string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.actionsFired++
	c.actionsByType[action]++
	c.mu.Unlock()
}

// --- Transport / adapters ---

// IncIPCDecodeErrors records an IPC frame decode error.
func (c *Collector) IncIPCDecodeErrors() {
	if c == nil {
		return
	}
	c.add(&c.ipcDecodeErrors, 1)
}

// IncPublishSuccess records an action event delivered by an adapter.
func (c *Collector) IncPublishSuccess() {
	if c == nil {
		return
	}
	c.add(&c.publishSuccess, 1)
}

// IncPublishFailure records an action event an adapter failed to deliver.
func (c *Collector) IncPublishFailure() {
	if c == nil {
		return
	}
	c.add(&c.publishFailure, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byType := make(map[string]int64, len(c.actionsByType))
	for k, v := range c.actionsByType {
		byType[k] = v
	}

	return Snapshot{
		RequestsIssued:         c.requestsIssued,
		RequestsAlreadyPending: c.requestsAlreadyPending,
		PagesApplied:           c.pagesApplied,
		ItemsAdded:             c.itemsAdded,
		StalePagesDropped:      c.stalePagesDropped,
		FetchFailures:          c.fetchFailures,

		Navigations:   c.navigations,
		DeferredMoves: c.deferredMoves,
		AutoAdvances:  c.autoAdvances,

		Clicks:          c.clicks,
		Drags:           c.drags,
		LongPresses:     c.longPresses,
		ActionsFired:    c.actionsFired,
		ActionsByType:   byType,
		GesturesAborted: c.gesturesAborted,

		IPCDecodeErrors: c.ipcDecodeErrors,
		PublishSuccess:  c.publishSuccess,
		PublishFailure:  c.publishFailure,

		Transport: c.transport,
		SessionID: c.sessionID,
	}
}
