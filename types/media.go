// Package types defines core domain types shared by the lightbox packages.
package types

import "fmt"

// MediaKind distinguishes photos from documents.
type MediaKind string

const (
	MediaKindPhoto    MediaKind = "photo"
	MediaKindDocument MediaKind = "document"
)

// Valid reports whether k is a known media kind.
func (k MediaKind) Valid() bool {
	return k == MediaKindPhoto || k == MediaKindDocument
}

// MediaItemRef identifies one media item and the message that carries it.
// Values are immutable once created; copy them freely.
type MediaItemRef struct {
	// Kind is photo or document.
	Kind MediaKind `json:"kind" msgpack:"kind"`
	// ItemID is the photo or document id.
	ItemID int64 `json:"item_id" msgpack:"item_id"`
	// MessageID is the owning message id. For profile photos it is the
	// photo's server ordering key.
	MessageID int64 `json:"message_id" msgpack:"message_id"`
	// Index is the position the server reported for the item, -1 if unknown.
	Index int `json:"index" msgpack:"index"`
}

// IsZero reports whether r is the zero reference.
func (r MediaItemRef) IsZero() bool {
	return r == MediaItemRef{}
}

// Validate checks that the reference is usable.
func (r MediaItemRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid media kind %q", r.Kind)
	}
	if r.ItemID == 0 {
		return fmt.Errorf("media item %s has no item id", r.Kind)
	}
	return nil
}

func (r MediaItemRef) String() string {
	return fmt.Sprintf("%s:%d@msg%d", r.Kind, r.ItemID, r.MessageID)
}

// Direction is a paging direction relative to the loaded sequence.
type Direction int

const (
	// Before pages toward older items (lower message ids).
	Before Direction = iota
	// After pages toward newer items (higher message ids).
	After
)

// DirectionOf returns the direction a signed navigation delta points to.
func DirectionOf(delta int) Direction {
	if delta < 0 {
		return Before
	}
	return After
}

func (d Direction) String() string {
	if d == Before {
		return "before"
	}
	return "after"
}
