package clock

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

// fakeTime is the part of clockwork's fake clock the Fake drives.
type fakeTime interface {
	clockwork.Clock
	Advance(d time.Duration)
}

// Fake is a manually advanced Source for tests and replays. Time and timer
// expiry come from a clockwork fake clock; frame steps are delivered here.
// Callbacks run synchronously inside Advance.
type Fake struct {
	clock   fakeTime
	nextID  uint64
	frames  map[uint64]func(time.Time)
	timers  map[uint64]*fakeTimer
	stepped int
}

type fakeTimer struct {
	id    uint64
	due   time.Time
	timer clockwork.Timer
	fn    func(time.Time)
}

// NewFake creates a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		clock:  clockwork.NewFakeClockAt(start),
		frames: make(map[uint64]func(time.Time)),
		timers: make(map[uint64]*fakeTimer),
	}
}

// Now implements Source.
func (f *Fake) Now() time.Time { return f.clock.Now() }

// Subscribe implements Source.
func (f *Fake) Subscribe(step func(now time.Time)) func() {
	f.nextID++
	id := f.nextID
	f.frames[id] = step
	return func() { delete(f.frames, id) }
}

// AfterFunc implements Source.
func (f *Fake) AfterFunc(d time.Duration, fn func(now time.Time)) func() {
	f.nextID++
	id := f.nextID
	t := &fakeTimer{
		id:    id,
		due:   f.clock.Now().Add(d),
		timer: f.clock.NewTimer(d),
		fn:    fn,
	}
	f.timers[id] = t
	return func() {
		if _, ok := f.timers[id]; ok {
			t.timer.Stop()
			delete(f.timers, id)
		}
	}
}

// Subscribers returns the number of live frame subscriptions.
func (f *Fake) Subscribers() int { return len(f.frames) }

// PendingTimers returns the number of timers that have not fired.
func (f *Fake) PendingTimers() int { return len(f.timers) }

// Frames returns how many frame steps have been delivered.
func (f *Fake) Frames() int { return f.stepped }

// Advance moves time forward by d, firing due timers in order and then
// delivering one frame step at the final time. A timer scheduled by a
// callback fires in the same call when it falls due before the end.
func (f *Fake) Advance(d time.Duration) {
	target := f.clock.Now().Add(d)
	for {
		t := f.nextDue(target)
		if t == nil {
			break
		}
		if gap := t.due.Sub(f.clock.Now()); gap > 0 {
			f.clock.Advance(gap)
		}
		now := <-t.timer.Chan()
		delete(f.timers, t.id)
		t.fn(now)
	}
	if gap := target.Sub(f.clock.Now()); gap > 0 {
		f.clock.Advance(gap)
	}
	f.step()
}

// AdvanceFrames advances in n equal frame steps covering d.
func (f *Fake) AdvanceFrames(d time.Duration, n int) {
	if n <= 0 {
		return
	}
	per := d / time.Duration(n)
	for range n {
		f.Advance(per)
	}
}

// nextDue returns the earliest timer due at or before limit, ties broken
// by scheduling order.
func (f *Fake) nextDue(limit time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range f.timers {
		if t.due.After(limit) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.id < next.id) {
			next = t
		}
	}
	return next
}

func (f *Fake) step() {
	if len(f.frames) == 0 {
		return
	}
	ids := make([]uint64, 0, len(f.frames))
	for id := range f.frames {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	f.stepped++
	now := f.clock.Now()
	for _, id := range ids {
		// A callback may unsubscribe others.
		if fn, ok := f.frames[id]; ok {
			fn(now)
		}
	}
}

var _ Source = (*Fake)(nil)
