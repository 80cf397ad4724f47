package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameInterval is the frame tick period while the viewer animates.
const FrameInterval = time.Second / 60

type frameMsg struct{ at time.Time }

type timerMsg struct {
	id uint64
	at time.Time
}

// tickFunc schedules a message after d; tea.Tick in production.
type tickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// teaClock is a clock.Source whose frames and timers arrive as tea
// messages, so every viewer callback runs inside Update.
type teaClock struct {
	now     func() time.Time
	tick    tickFunc
	nextID  uint64
	frames  map[uint64]func(time.Time)
	timers  map[uint64]func(time.Time)
	pending []tea.Cmd
	ticking bool
}

func newTeaClock(now func() time.Time, tick tickFunc) *teaClock {
	if now == nil {
		now = time.Now
	}
	if tick == nil {
		tick = tea.Tick
	}
	return &teaClock{
		now:    now,
		tick:   tick,
		frames: make(map[uint64]func(time.Time)),
		timers: make(map[uint64]func(time.Time)),
	}
}

func (c *teaClock) Now() time.Time { return c.now() }

func (c *teaClock) Subscribe(step func(now time.Time)) func() {
	c.nextID++
	id := c.nextID
	c.frames[id] = step
	return func() { delete(c.frames, id) }
}

func (c *teaClock) AfterFunc(d time.Duration, fn func(now time.Time)) func() {
	c.nextID++
	id := c.nextID
	c.timers[id] = fn
	c.pending = append(c.pending, c.tick(d, func(t time.Time) tea.Msg {
		return timerMsg{id: id, at: t}
	}))
	return func() { delete(c.timers, id) }
}

// cmds drains timer ticks scheduled since the last call and starts a frame
// tick when someone is subscribed and none is outstanding.
func (c *teaClock) cmds() []tea.Cmd {
	out := c.pending
	c.pending = nil
	if len(c.frames) > 0 && !c.ticking {
		c.ticking = true
		out = append(out, c.tick(FrameInterval, func(t time.Time) tea.Msg {
			return frameMsg{at: t}
		}))
	}
	return out
}

func (c *teaClock) frame() {
	c.ticking = false
	ids := make([]uint64, 0, len(c.frames))
	for id := range c.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	now := c.now()
	for _, id := range ids {
		// An earlier step may have unsubscribed this one.
		if step, ok := c.frames[id]; ok {
			step(now)
		}
	}
}

func (c *teaClock) fire(id uint64) {
	fn, ok := c.timers[id]
	if !ok {
		return
	}
	delete(c.timers, id)
	fn(c.now())
}
