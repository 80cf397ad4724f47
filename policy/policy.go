// Package policy controls how viewer actions reach a publishing adapter.
//
// A policy sits between the viewer and an adapter.Adapter and implements
// adapter.Adapter itself, so the viewer publishes through it unchanged.
//   - Strict: every action is published immediately; none are dropped
//   - Buffered: actions are held in a bounded buffer and published on
//     flush; under pressure only droppable actions are discarded
package policy

import (
	"context"
	"maps"
	"sync"

	"github.com/pithecene-io/lightbox/adapter"
	"github.com/pithecene-io/lightbox/types"
)

// Policy is an adapter with delivery semantics.
type Policy interface {
	adapter.Adapter

	// Flush publishes anything buffered.
	Flush(ctx context.Context) error

	// Stats returns an atomic snapshot of policy counters.
	Stats() Stats
}

// Stats represents policy observability counters.
type Stats struct {
	// TotalEvents is the number of actions handed to the policy.
	TotalEvents int64 `json:"total_events"`
	// EventsPublished is the number of actions the adapter accepted.
	EventsPublished int64 `json:"events_published"`
	// EventsDropped is the total number of actions dropped.
	EventsDropped int64 `json:"events_dropped"`
	// DroppedByAction maps actions to drop counts.
	DroppedByAction map[types.Action]int64 `json:"dropped_by_action"`
	// Buffered is the number of actions currently held.
	Buffered int64 `json:"buffered"`
	// FlushCount is the number of flush operations.
	FlushCount int64 `json:"flush_count"`
	// Errors is the count of publish failures.
	Errors int64 `json:"errors"`
}

// droppableActions may be discarded by a buffered policy under pressure.
// They are superseded by the next action of the same kind.
var droppableActions = map[types.Action]bool{
	types.ActionNavigate:        true,
	types.ActionDropdown:        true,
	types.ActionOpenContextMenu: true,
}

// IsDroppable returns true if the action may be dropped by policy.
func IsDroppable(action types.Action) bool {
	return droppableActions[action]
}

// DroppableActions returns the set of actions that may be dropped.
func DroppableActions() map[types.Action]bool {
	return maps.Clone(droppableActions)
}

// statsRecorder is an internal helper for thread-safe stats management.
//
// Lock discipline:
//   - Strict uses the locking methods
//   - Buffered uses the Locked methods only while holding Buffered.mu
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{
		stats: Stats{DroppedByAction: make(map[types.Action]int64)},
	}
}

func (r *statsRecorder) incTotal() {
	r.mu.Lock()
	r.stats.TotalEvents++
	r.mu.Unlock()
}

func (r *statsRecorder) incPublished() {
	r.mu.Lock()
	r.stats.EventsPublished++
	r.mu.Unlock()
}

func (r *statsRecorder) incErrors() {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()
}

func (r *statsRecorder) incFlush() {
	r.mu.Lock()
	r.stats.FlushCount++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// --- Locked methods for Buffered ---
// Caller must hold Buffered.mu.

func (r *statsRecorder) incTotalLocked()          { r.stats.TotalEvents++ }
func (r *statsRecorder) incPublishedLocked(n int) { r.stats.EventsPublished += int64(n) }
func (r *statsRecorder) incErrorsLocked()         { r.stats.Errors++ }
func (r *statsRecorder) incFlushLocked()          { r.stats.FlushCount++ }
func (r *statsRecorder) setBufferedLocked(n int)  { r.stats.Buffered = int64(n) }

func (r *statsRecorder) incDroppedLocked(action types.Action) {
	r.stats.EventsDropped++
	r.stats.DroppedByAction[action]++
}

func (r *statsRecorder) snapshotLocked() Stats {
	s := r.stats
	s.DroppedByAction = maps.Clone(r.stats.DroppedByAction)
	return s
}
