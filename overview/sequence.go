// Package overview holds the partially-loaded media sequence of one scope and
// the pager that extends it.
//
// A Sequence is ordered by ascending message id (oldest first), which is the
// server's recency order, and never holds two items with the same message id.
// Batches are concatenated at the matching end and never re-sorted.
package overview

import (
	"sort"

	"github.com/pithecene-io/lightbox/types"
)

// Sequence is the ordered, partially-loaded media list of one scope.
type Sequence struct {
	scope         types.Scope
	items         []types.MediaItemRef
	hasMoreBefore bool
	hasMoreAfter  bool
	generation    uint64
}

// Scope returns the scope the sequence belongs to.
func (s *Sequence) Scope() types.Scope { return s.scope }

// Generation identifies the Reset that created this sequence.
func (s *Sequence) Generation() uint64 { return s.generation }

// Len returns the number of loaded items.
func (s *Sequence) Len() int { return len(s.items) }

// At returns the item at index i. It panics if i is out of range.
func (s *Sequence) At(i int) types.MediaItemRef { return s.items[i] }

// Items returns a copy of the loaded items.
func (s *Sequence) Items() []types.MediaItemRef {
	out := make([]types.MediaItemRef, len(s.items))
	copy(out, s.items)
	return out
}

// HasMore reports whether the server may hold more items in direction d.
func (s *Sequence) HasMore(d types.Direction) bool {
	if d == types.Before {
		return s.hasMoreBefore
	}
	return s.hasMoreAfter
}

// IndexOf returns the index of the item carried by messageID.
func (s *Sequence) IndexOf(messageID int64) (int, bool) {
	i := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].MessageID >= messageID
	})
	if i < len(s.items) && s.items[i].MessageID == messageID {
		return i, true
	}
	return -1, false
}

// Contains reports whether an item with messageID is loaded.
func (s *Sequence) Contains(messageID int64) bool {
	_, ok := s.IndexOf(messageID)
	return ok
}

// boundary returns the paging cursor for direction d: the oldest loaded
// message id for Before, the newest for After, 0 when nothing is loaded.
func (s *Sequence) boundary(d types.Direction) int64 {
	if len(s.items) == 0 {
		return 0
	}
	if d == types.Before {
		return s.items[0].MessageID
	}
	return s.items[len(s.items)-1].MessageID
}

func (s *Sequence) setHasMore(d types.Direction, v bool) {
	if d == types.Before {
		s.hasMoreBefore = v
	} else {
		s.hasMoreAfter = v
	}
}

// merge concatenates batch at the end given by d and returns how many items
// were added. Entries that would break the strict ordering (including
// duplicates of loaded items) are skipped.
func (s *Sequence) merge(d types.Direction, batch []types.MediaItemRef) int {
	accepted := make([]types.MediaItemRef, 0, len(batch))
	for _, it := range batch {
		if n := len(accepted); n > 0 && it.MessageID <= accepted[n-1].MessageID {
			continue
		}
		if len(s.items) > 0 {
			if d == types.Before && it.MessageID >= s.items[0].MessageID {
				continue
			}
			if d == types.After && it.MessageID <= s.items[len(s.items)-1].MessageID {
				continue
			}
		}
		accepted = append(accepted, it)
	}
	if len(accepted) == 0 {
		return 0
	}
	if d == types.Before {
		s.items = append(accepted, s.items...)
	} else {
		s.items = append(s.items, accepted...)
	}
	return len(accepted)
}

// replace swaps the loaded items for a fresh, validated list.
func (s *Sequence) replace(items []types.MediaItemRef, hasMoreBefore, hasMoreAfter bool) {
	s.items = s.items[:0]
	s.merge(types.After, items)
	s.hasMoreBefore = hasMoreBefore
	s.hasMoreAfter = hasMoreAfter
}

// rekey changes the message id of one loaded item, keeping order and
// uniqueness. Returns false if oldID is not loaded.
func (s *Sequence) rekey(oldID, newID int64) bool {
	i, ok := s.IndexOf(oldID)
	if !ok {
		return false
	}
	it := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	if s.Contains(newID) {
		return true
	}
	it.MessageID = newID
	j := sort.Search(len(s.items), func(k int) bool {
		return s.items[k].MessageID > newID
	})
	s.items = append(s.items, types.MediaItemRef{})
	copy(s.items[j+1:], s.items[j:])
	s.items[j] = it
	return true
}
