package overview

import (
	"testing"

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

func messageIDs(s *Sequence) []int64 {
	out := make([]int64, s.Len())
	for i := range out {
		out[i] = s.At(i).MessageID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func assertUniqueOrdered(t *testing.T, s *Sequence) {
	t.Helper()
	for i := 1; i < s.Len(); i++ {
		if s.At(i).MessageID <= s.At(i-1).MessageID {
			t.Fatalf("sequence not strictly ordered at %d: %v", i, messageIDs(s))
		}
	}
}

func TestPager_ResetWithSeed(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	seq := p.Reset(peer, &seed)

	if seq.Len() != 1 || seq.At(0) != seed {
		t.Fatalf("seeded sequence = %v", seq.Items())
	}
	if !seq.HasMore(types.Before) || !seq.HasMore(types.After) {
		t.Error("seeded sequence should have more in both directions")
	}
	if seq.Scope() != peer {
		t.Errorf("Scope = %v, want %v", seq.Scope(), peer)
	}
}

func TestPager_ResetWithoutSeedPagesFromNewest(t *testing.T) {
	p := NewPager(10)
	seq := p.Reset(peer, nil)

	if seq.HasMore(types.After) {
		t.Error("unseeded sequence should not page after")
	}
	req, status := p.RequestMore(types.Before)
	if status != Issued {
		t.Fatalf("status = %v, want issued", status)
	}
	if req.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", req.Cursor)
	}
}

func TestPager_RequestMoreUsesBoundaryCursor(t *testing.T) {
	p := NewPager(25)
	seed := photo(50)
	p.Reset(peer, &seed)
	req, _ := p.RequestMore(types.Before)
	p.Extend(req, Page{Items: photos(30, 40), HasMore: true})

	before, _ := p.RequestMore(types.Before)
	after, _ := p.RequestMore(types.After)

	if before.Cursor != 30 {
		t.Errorf("before cursor = %d, want 30", before.Cursor)
	}
	if after.Cursor != 50 {
		t.Errorf("after cursor = %d, want 50", after.Cursor)
	}
	if before.Limit != 25 || after.Limit != 25 {
		t.Errorf("limits = %d/%d, want 25", before.Limit, after.Limit)
	}
	if before.ID == after.ID {
		t.Error("requests in different directions share an id")
	}
}

func TestPager_RequestMoreTwiceIssuesOnce(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)

	first, s1 := p.RequestMore(types.Before)
	second, s2 := p.RequestMore(types.Before)

	if s1 != Issued {
		t.Fatalf("first status = %v", s1)
	}
	if s2 != AlreadyPending {
		t.Fatalf("second status = %v, want already_pending", s2)
	}
	if first.ID != second.ID {
		t.Errorf("pending request changed: %d -> %d", first.ID, second.ID)
	}
}

func TestPager_ExtendPrependsAndAppends(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)

	before, _ := p.RequestMore(types.Before)
	after, _ := p.RequestMore(types.After)

	if n, ok := p.Extend(after, Page{Items: photos(60, 70), HasMore: false}); !ok || n != 2 {
		t.Fatalf("after extend = %d, %v", n, ok)
	}
	if n, ok := p.Extend(before, Page{Items: photos(20, 30, 40), HasMore: true}); !ok || n != 3 {
		t.Fatalf("before extend = %d, %v", n, ok)
	}

	seq := p.Sequence()
	want := []int64{20, 30, 40, 50, 60, 70}
	if got := messageIDs(seq); !equalIDs(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if !seq.HasMore(types.Before) || seq.HasMore(types.After) {
		t.Errorf("flags = %v/%v, want true/false", seq.HasMore(types.Before), seq.HasMore(types.After))
	}
	if _, pending := p.Pending(types.Before); pending {
		t.Error("before request still pending after extend")
	}
}

func TestPager_ExtendDropsDuplicatesAndDisorder(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)

	req, _ := p.RequestMore(types.Before)
	// 50 duplicates the seed, 60 is on the wrong side, 35 repeats out of order.
	n, ok := p.Extend(req, Page{Items: photos(30, 35, 35, 32, 50, 60), HasMore: true})
	if !ok {
		t.Fatal("extend rejected")
	}
	if n != 2 {
		t.Errorf("added = %d, want 2", n)
	}
	want := []int64{30, 35, 50}
	if got := messageIDs(p.Sequence()); !equalIDs(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
}

func TestPager_NoDuplicatesAfterManyExtends(t *testing.T) {
	p := NewPager(3)
	seed := photo(100)
	p.Reset(peer, &seed)

	batches := [][]int64{
		{90, 95, 100},
		{85, 90, 91},
		{80, 85},
		{70, 75, 80, 100},
	}
	for _, b := range batches {
		req, status := p.RequestMore(types.Before)
		if status != Issued {
			t.Fatalf("status = %v", status)
		}
		p.Extend(req, Page{Items: photos(b...), HasMore: true})
		assertUniqueOrdered(t, p.Sequence())
	}
	for _, b := range [][]int64{{100, 110}, {105, 110, 120}} {
		req, _ := p.RequestMore(types.After)
		p.Extend(req, Page{Items: photos(b...), HasMore: true})
		assertUniqueOrdered(t, p.Sequence())
	}
}

func TestPager_EmptyProgressEndsPaging(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)

	req, _ := p.RequestMore(types.Before)
	p.Extend(req, Page{Items: photos(50), HasMore: true})

	if p.Sequence().HasMore(types.Before) {
		t.Error("a page without progress should end paging")
	}
	if _, status := p.RequestMore(types.Before); status != Exhausted {
		t.Errorf("status = %v, want exhausted", status)
	}
}

func TestPager_StaleScopeNeverMutates(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)
	req, _ := p.RequestMore(types.Before)

	other := types.Scope{Kind: types.ScopeHistoryFiles, PeerID: 7}
	p.Reset(other, nil)

	if _, ok := p.Extend(req, Page{Items: photos(10, 20), HasMore: true}); ok {
		t.Fatal("stale page applied")
	}
	if p.Sequence().Len() != 0 {
		t.Errorf("sequence mutated: %v", p.Sequence().Items())
	}
	if p.Fail(req) {
		t.Error("stale failure applied")
	}
}

func TestPager_StaleAfterResetToSameScope(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)
	old, _ := p.RequestMore(types.Before)

	p.Reset(peer, &seed)
	fresh, _ := p.RequestMore(types.Before)

	if _, ok := p.Extend(old, Page{Items: photos(10), HasMore: true}); ok {
		t.Fatal("response from a previous reset applied")
	}
	if _, ok := p.Extend(fresh, Page{Items: photos(40), HasMore: true}); !ok {
		t.Fatal("current response rejected")
	}
}

func TestPager_ForgedScopeRejected(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)
	req, _ := p.RequestMore(types.Before)

	forged := req
	forged.Scope = types.Scope{Kind: types.ScopeUserPhotos, PeerID: 42}
	if _, ok := p.Extend(forged, Page{Items: photos(10)}); ok {
		t.Fatal("response with foreign scope applied")
	}
	if _, pending := p.Pending(types.Before); !pending {
		t.Error("rejected response cleared the pending request")
	}
}

func TestPager_FailExhaustsDirection(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)
	req, _ := p.RequestMore(types.After)

	if !p.Fail(req) {
		t.Fatal("Fail rejected current request")
	}
	if p.Sequence().HasMore(types.After) {
		t.Error("failed direction still has more")
	}
	if !p.Sequence().HasMore(types.Before) {
		t.Error("other direction affected by failure")
	}
	if _, status := p.RequestMore(types.After); status != Exhausted {
		t.Errorf("status = %v, want exhausted", status)
	}
}

func TestPager_StandaloneNeverRequests(t *testing.T) {
	p := NewPager(10)
	seed := photo(1)
	p.Reset(types.Scope{}, &seed)

	for _, d := range []types.Direction{types.Before, types.After} {
		if _, status := p.RequestMore(d); status != Exhausted {
			t.Errorf("%v status = %v, want exhausted", d, status)
		}
	}
}

func TestPager_ReplaceAndRekey(t *testing.T) {
	p := NewPager(10)
	seed := photo(50)
	p.Reset(peer, &seed)
	req, _ := p.RequestMore(types.Before)

	if !p.Replace(peer, photos(10, 20, 50, 40), false, true) {
		t.Fatal("Replace rejected current scope")
	}
	if got := messageIDs(p.Sequence()); !equalIDs(got, []int64{10, 20, 50}) {
		t.Errorf("items = %v", got)
	}
	if _, ok := p.Extend(req, Page{Items: photos(5)}); ok {
		t.Error("request issued before Replace still applied")
	}

	if !p.ChangeMessageID(20, 60) {
		t.Fatal("rekey failed")
	}
	if got := messageIDs(p.Sequence()); !equalIDs(got, []int64{10, 50, 60}) {
		t.Errorf("items after rekey = %v", got)
	}
	if !p.ChangeMessageID(10, 50) {
		t.Fatal("rekey onto an existing id failed")
	}
	if got := messageIDs(p.Sequence()); !equalIDs(got, []int64{50, 60}) {
		t.Errorf("items after collapsing rekey = %v", got)
	}
	if p.Replace(types.Scope{Kind: types.ScopeUserPhotos, PeerID: 1}, nil, false, false) {
		t.Error("Replace accepted a foreign scope")
	}
}

func TestSequence_IndexOf(t *testing.T) {
	p := NewPager(10)
	p.Reset(peer, nil)
	p.Replace(peer, photos(3, 7, 9), false, false)
	seq := p.Sequence()

	if i, ok := seq.IndexOf(7); !ok || i != 1 {
		t.Errorf("IndexOf(7) = %d, %v", i, ok)
	}
	if _, ok := seq.IndexOf(8); ok {
		t.Error("IndexOf(8) found a missing id")
	}
}
