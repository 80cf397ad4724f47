package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeKind is the kind of overview a sequence belongs to.
type ScopeKind string

const (
	// ScopeNone marks a standalone item with no overview.
	ScopeNone ScopeKind = ""
	// ScopePeerPhotos is the shared photo overview of a conversation.
	ScopePeerPhotos ScopeKind = "peer"
	// ScopeHistoryFiles is the shared file overview of a conversation.
	ScopeHistoryFiles ScopeKind = "files"
	// ScopeUserPhotos is a user's profile photo list.
	ScopeUserPhotos ScopeKind = "user"
)

// Scope identifies the conversation, user or category a sequence belongs to.
type Scope struct {
	Kind   ScopeKind `json:"kind" msgpack:"kind"`
	PeerID int64     `json:"peer_id" msgpack:"peer_id"`
}

// IsZero reports whether s is the standalone (empty) scope.
func (s Scope) IsZero() bool {
	return s.Kind == ScopeNone
}

// Key returns the canonical "kind:peer" form of s.
func (s Scope) Key() string {
	if s.IsZero() {
		return ""
	}
	return string(s.Kind) + ":" + strconv.FormatInt(s.PeerID, 10)
}

func (s Scope) String() string {
	if s.IsZero() {
		return "standalone"
	}
	return s.Key()
}

// MediaKind returns the media kind the scope lists.
func (s Scope) MediaKind() MediaKind {
	if s.Kind == ScopeHistoryFiles {
		return MediaKindDocument
	}
	return MediaKindPhoto
}

// ParseScope parses a "kind:peer" scope key such as "peer:42".
func ParseScope(key string) (Scope, error) {
	kind, id, ok := strings.Cut(key, ":")
	if !ok {
		return Scope{}, fmt.Errorf("invalid scope %q: expected kind:id", key)
	}
	sk := ScopeKind(kind)
	switch sk {
	case ScopePeerPhotos, ScopeHistoryFiles, ScopeUserPhotos:
	default:
		return Scope{}, fmt.Errorf("invalid scope kind %q: must be peer, files, or user", kind)
	}
	peerID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Scope{}, fmt.Errorf("invalid scope id %q: %w", id, err)
	}
	return Scope{Kind: sk, PeerID: peerID}, nil
}
