// Package catalog is a local sqlite index of media items per scope. It
// serves overview pages to the viewer, either in process or behind the
// ipc transport.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pithecene-io/lightbox/iox"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
)

// ErrNotFound is returned when no item matches a lookup.
var ErrNotFound = errors.New("catalog: item not found")

// Entry is one stored item.
type Entry struct {
	Scope types.Scope        `json:"scope" yaml:"scope"`
	Item  types.MediaItemRef `json:"item" yaml:"item"`
	// Name is the display name, a file name for documents.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Store implements overview.Fetcher over a sqlite database.
type Store struct {
	db *sql.DB
}

var _ overview.Fetcher = (*Store)(nil)

// Open opens or creates the catalog at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		iox.DiscardClose(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS media (
		scope_kind  TEXT    NOT NULL,
		peer_id     INTEGER NOT NULL,
		message_id  INTEGER NOT NULL,
		kind        TEXT    NOT NULL,
		item_id     INTEGER NOT NULL,
		name        TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (scope_kind, peer_id, message_id)
	);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces entries. Entries without a scope are rejected.
func (s *Store) Put(ctx context.Context, entries ...Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer iox.DiscardErr(tx.Rollback)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO media (scope_kind, peer_id, message_id, kind, item_id, name)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer iox.DiscardClose(stmt)

	for _, e := range entries {
		if e.Scope.IsZero() {
			return fmt.Errorf("entry %s has no scope", e.Item)
		}
		if err := e.Item.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			string(e.Scope.Kind), e.Scope.PeerID, e.Item.MessageID,
			string(e.Item.Kind), e.Item.ItemID, e.Name,
		); err != nil {
			return fmt.Errorf("insert %s: %w", e.Item, err)
		}
	}
	return tx.Commit()
}

// Seed fills scope with count demo items on message ids 1..count, replacing
// any that exist. File scopes get documents, other scopes photos.
func (s *Store) Seed(ctx context.Context, scope types.Scope, count int) error {
	kind := scope.MediaKind()
	entries := make([]Entry, 0, count)
	for i := 1; i <= count; i++ {
		e := Entry{
			Scope: scope,
			Item: types.MediaItemRef{
				Kind:      kind,
				ItemID:    scope.PeerID*100000 + int64(i),
				MessageID: int64(i),
				Index:     -1,
			},
		}
		if kind == types.MediaKindDocument {
			e.Name = fmt.Sprintf("document-%04d.pdf", i)
		} else {
			e.Name = fmt.Sprintf("photo-%04d.jpg", i)
		}
		entries = append(entries, e)
	}
	return s.Put(ctx, entries...)
}

// selectColumns computes Index as the item's position within its scope.
const selectColumns = `
	m.message_id, m.kind, m.item_id, m.name,
	(SELECT COUNT(*) FROM media o
	 WHERE o.scope_kind = m.scope_kind AND o.peer_id = m.peer_id AND o.message_id < m.message_id)`

func scanEntry(scope types.Scope, rows interface{ Scan(...any) error }) (Entry, error) {
	var (
		e    Entry
		kind string
	)
	e.Scope = scope
	if err := rows.Scan(&e.Item.MessageID, &kind, &e.Item.ItemID, &e.Name, &e.Item.Index); err != nil {
		return Entry{}, err
	}
	e.Item.Kind = types.MediaKind(kind)
	return e, nil
}

// Get returns the entry on messageID in scope.
func (s *Store) Get(ctx context.Context, scope types.Scope, messageID int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+`
		FROM media m WHERE m.scope_kind = ? AND m.peer_id = ? AND m.message_id = ?`,
		string(scope.Kind), scope.PeerID, messageID)
	e, err := scanEntry(scope, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s message %d: %w", scope, messageID, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get: %w", err)
	}
	return e, nil
}

// Latest returns the newest entry in scope.
func (s *Store) Latest(ctx context.Context, scope types.Scope) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+`
		FROM media m WHERE m.scope_kind = ? AND m.peer_id = ?
		ORDER BY m.message_id DESC LIMIT 1`,
		string(scope.Kind), scope.PeerID)
	e, err := scanEntry(scope, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", scope, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("latest: %w", err)
	}
	return e, nil
}

// List returns every entry in scope in ascending message order.
func (s *Store) List(ctx context.Context, scope types.Scope) ([]Entry, error) {
	return s.query(ctx, scope, `SELECT `+selectColumns+`
		FROM media m WHERE m.scope_kind = ? AND m.peer_id = ?
		ORDER BY m.message_id ASC`,
		string(scope.Kind), scope.PeerID)
}

// Scopes returns every scope that holds at least one item.
func (s *Store) Scopes(ctx context.Context) ([]types.Scope, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT scope_kind, peer_id FROM media ORDER BY scope_kind, peer_id`)
	if err != nil {
		return nil, fmt.Errorf("scopes: %w", err)
	}
	defer iox.DiscardClose(rows)

	var out []types.Scope
	for rows.Next() {
		var (
			kind string
			sc   types.Scope
		)
		if err := rows.Scan(&kind, &sc.PeerID); err != nil {
			return nil, err
		}
		sc.Kind = types.ScopeKind(kind)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Fetch implements overview.Fetcher. Before returns the Limit items older
// than Cursor (the newest items when Cursor is 0); After returns the Limit
// items newer than Cursor. Pages are ascending.
func (s *Store) Fetch(ctx context.Context, req overview.Request) (overview.Page, error) {
	if req.Scope.IsZero() || req.Limit <= 0 {
		return overview.Page{}, fmt.Errorf("invalid fetch for %s with limit %d", req.Scope, req.Limit)
	}
	if err := s.known(ctx, req.Scope); err != nil {
		return overview.Page{}, err
	}

	var (
		q    string
		args = []any{string(req.Scope.Kind), req.Scope.PeerID}
	)
	switch {
	case req.Direction == types.Before && req.Cursor == 0:
		q = `ORDER BY m.message_id DESC LIMIT ?`
	case req.Direction == types.Before:
		q = `AND m.message_id < ? ORDER BY m.message_id DESC LIMIT ?`
		args = append(args, req.Cursor)
	default:
		q = `AND m.message_id > ? ORDER BY m.message_id ASC LIMIT ?`
		args = append(args, req.Cursor)
	}
	// One extra row tells whether more remain.
	args = append(args, req.Limit+1)

	entries, err := s.query(ctx, req.Scope, `SELECT `+selectColumns+`
		FROM media m WHERE m.scope_kind = ? AND m.peer_id = ? `+q, args...)
	if err != nil {
		return overview.Page{}, err
	}

	page := overview.Page{HasMore: len(entries) > req.Limit}
	if page.HasMore {
		entries = entries[:req.Limit]
	}
	page.Items = make([]types.MediaItemRef, len(entries))
	for i, e := range entries {
		page.Items[i] = e.Item
	}
	if req.Direction == types.Before {
		for i, j := 0, len(page.Items)-1; i < j; i, j = i+1, j-1 {
			page.Items[i], page.Items[j] = page.Items[j], page.Items[i]
		}
	}
	return page, nil
}

func (s *Store) known(ctx context.Context, scope types.Scope) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE scope_kind = ? AND peer_id = ?`,
		string(scope.Kind), scope.PeerID).Scan(&n)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", scope, overview.ErrUnknownScope)
	}
	return nil
}

func (s *Store) query(ctx context.Context, scope types.Scope, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer iox.DiscardClose(rows)

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(scope, rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
