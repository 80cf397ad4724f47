package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/lightbox/adapter"
	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/log"
	"github.com/pithecene-io/lightbox/metrics"
	"github.com/pithecene-io/lightbox/overview"
	"github.com/pithecene-io/lightbox/types"
	"github.com/pithecene-io/lightbox/viewer"
)

// DefaultFetchTimeout bounds one page fetch.
const DefaultFetchTimeout = 10 * time.Second

// Simulated download pacing for documents.
const (
	downloadInterval = 120 * time.Millisecond
	downloadStep     = 0.125
)

// Natural media size in cells; zoom fits it to the content area.
var photoSize = image.Pt(96, 32)

// Options configures a viewer session.
type Options struct {
	Config  viewer.Config
	Fetcher overview.Fetcher
	Scope   types.Scope
	Item    types.MediaItemRef
	// Describe names an item for the chrome; defaults to its String form.
	Describe func(types.MediaItemRef) string
	// Publisher receives every action. Optional.
	Publisher    adapter.Adapter
	SessionID    string
	Logger       *log.Logger
	Metrics      *metrics.Collector
	FetchTimeout time.Duration

	now  func() time.Time
	tick tickFunc
}

type pageMsg struct {
	req  overview.Request
	page overview.Page
}

type fetchFailedMsg struct {
	req overview.Request
	err error
}

type downloadMsg struct {
	item     types.MediaItemRef
	progress float64
}

type publishedMsg struct {
	action types.Action
	err    error
}

// Model is the Bubble Tea model for one viewer session.
type Model struct {
	ctx       context.Context
	viewer    *viewer.Viewer
	clock     *teaClock
	fetcher   overview.Fetcher
	publisher adapter.Adapter
	describe  func(types.MediaItemRef) string
	sessionID string
	timeout   time.Duration
	log       *log.Logger

	actions []types.ActionEvent
	shown   types.MediaItemRef

	width    int
	height   int
	status   string
	quitting bool
}

// NewModel opens the viewer on opts.Item.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if opts.Fetcher == nil && !opts.Scope.IsZero() {
		return nil, errors.New("a fetcher is required to browse a scope")
	}
	m := &Model{
		ctx:       ctx,
		clock:     newTeaClock(opts.now, opts.tick),
		fetcher:   opts.Fetcher,
		publisher: opts.Publisher,
		describe:  opts.Describe,
		sessionID: opts.SessionID,
		timeout:   opts.FetchTimeout,
		log:       opts.Logger,
	}
	if m.describe == nil {
		m.describe = types.MediaItemRef.String
	}
	if m.timeout <= 0 {
		m.timeout = DefaultFetchTimeout
	}

	v, err := viewer.New(opts.Config, viewer.Options{
		Clock:   m.clock,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
		OnAction: func(ev types.ActionEvent) {
			m.actions = append(m.actions, ev)
		},
	})
	if err != nil {
		return nil, err
	}
	m.viewer = v
	if err := v.Open(opts.Scope, opts.Item); err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Item, err)
	}
	return m, nil
}

// Viewer returns the wrapped viewer.
func (m *Model) Viewer() *viewer.Viewer { return m.viewer }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.flush()...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout(true)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if k := keys.viewerKey(msg); k != viewer.KeyNone {
			m.viewer.Key(k)
		}

	case tea.MouseMsg:
		m.mouse(msg)

	case frameMsg:
		m.clock.frame()

	case timerMsg:
		m.clock.fire(msg.id)

	case pageMsg:
		m.viewer.HandlePage(msg.req, msg.page)

	case fetchFailedMsg:
		m.viewer.HandleFailure(msg.req, msg.err)

	case downloadMsg:
		cmds = append(cmds, m.download(msg))

	case publishedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("publish %s failed: %v", msg.action, msg.err)
		}
	}

	cmds = append(cmds, m.handleActions()...)
	if m.quitting {
		return m, tea.Quit
	}
	if cur, ok := m.viewer.Current(); ok && cur != m.shown {
		m.relayout(true)
	}
	cmds = append(cmds, m.flush()...)
	return m, tea.Batch(cmds...)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	p := image.Pt(msg.X, msg.Y)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Ctrl {
			m.viewer.Wheel(1, true)
		} else {
			m.viewer.Wheel(-1, false)
		}
		return
	case tea.MouseButtonWheelDown:
		if msg.Ctrl {
			m.viewer.Wheel(-1, true)
		} else {
			m.viewer.Wheel(1, false)
		}
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.viewer.PointerPress(p)
		}
	case tea.MouseActionRelease:
		m.viewer.PointerRelease(p)
	case tea.MouseActionMotion:
		m.viewer.PointerMove(p)
	}
}

// relayout recomputes regions for the current size and item. With geometry
// it also resets zoom to fit the new item.
func (m *Model) relayout(geometry bool) {
	cur, _ := m.viewer.Current()
	m.shown = cur
	l := buildLayout(m.width, m.height, m.labels(cur))
	m.viewer.SetLayout(l)
	if geometry {
		size := photoSize
		if cur.Kind == types.MediaKindDocument {
			size = image.Pt(iconWidth, iconHeight)
		}
		m.viewer.SetGeometry(l.Content.Size(), size)
	}
}

func (m *Model) labels(cur types.MediaItemRef) labels {
	lb := labels{document: cur.Kind == types.MediaKindDocument}
	if cur.IsZero() {
		return lb
	}
	if m.viewer.Standalone() {
		lb.header = "standalone"
	} else {
		n := m.viewer.Sequence().Len()
		lb.header = fmt.Sprintf("%s  %d of %d", m.viewer.Scope(), m.viewer.Position()+1, n)
		if m.viewer.Sequence().HasMore(types.Before) || m.viewer.Sequence().HasMore(types.After) {
			lb.header += "+"
		}
	}
	lb.name = m.describe(cur)
	lb.date = fmt.Sprintf("msg %d", cur.MessageID)
	return lb
}

// handleActions reacts to actions the viewer fired during this update.
func (m *Model) handleActions() []tea.Cmd {
	var cmds []tea.Cmd
	for len(m.actions) > 0 {
		ev := m.actions[0]
		m.actions = m.actions[1:]
		if m.publisher != nil {
			cmds = append(cmds, m.publish(ev))
		}

		switch ev.Action {
		case types.ActionClose:
			m.quitting = true
		case types.ActionNavigate:
			m.status = ""
		case types.ActionSave:
			m.viewer.ShowSaved(m.describe(ev.Item))
		case types.ActionDownload:
			m.status = "downloading " + m.describe(ev.Item)
			cmds = append(cmds, m.downloadTick(ev.Item, 0))
		case types.ActionOpenDocument:
			m.status = "opened " + m.describe(ev.Item)
		default:
			m.status = string(ev.Action)
		}
	}
	return cmds
}

func (m *Model) publish(ev types.ActionEvent) tea.Cmd {
	event := adapter.NewEvent(m.sessionID, ev, time.Now())
	publisher, ctx := m.publisher, m.ctx
	return func() tea.Msg {
		return publishedMsg{action: ev.Action, err: publisher.Publish(ctx, event)}
	}
}

func (m *Model) downloadTick(item types.MediaItemRef, progress float64) tea.Cmd {
	return m.clock.tick(downloadInterval, func(time.Time) tea.Msg {
		return downloadMsg{item: item, progress: progress + downloadStep}
	})
}

// download advances the simulated transfer of msg.item while it stays on
// screen.
func (m *Model) download(msg downloadMsg) tea.Cmd {
	cur, ok := m.viewer.Current()
	if !ok || cur != msg.item || m.viewer.DocumentLoaded() {
		return nil
	}
	if msg.progress >= 1 {
		m.viewer.DocumentComplete()
		m.status = "downloaded " + m.describe(cur)
		return nil
	}
	m.viewer.DocumentProgress(msg.progress)
	return m.downloadTick(msg.item, msg.progress)
}

// flush turns queued page requests and clock work into commands.
func (m *Model) flush() []tea.Cmd {
	var cmds []tea.Cmd
	for _, req := range m.viewer.TakeRequests() {
		cmds = append(cmds, m.fetch(req))
	}
	return append(cmds, m.clock.cmds()...)
}

func (m *Model) fetch(req overview.Request) tea.Cmd {
	fetcher, parent, timeout := m.fetcher, m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		page, err := fetcher.Fetch(ctx, req)
		if err != nil {
			return fetchFailedMsg{req: req, err: err}
		}
		return pageMsg{req: req, page: page}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width < minWidth || m.height < minHeight {
		return HelpStyle.Render("window too small")
	}

	c := newCanvas(m.width, m.height)
	l := m.viewer.Layout()
	opacity := m.viewer.ChromeOpacity()

	m.drawMedia(c, l)

	control := func(r types.Region, label string) {
		if !m.viewer.Visible(r) || opacity <= 0 {
			return
		}
		st := c.style(controlStyle(opacity, m.viewer.OverLevel(r), m.viewer.DownLevel(r)))
		c.text(l.Rects[r].Min.X, l.Rects[r].Min.Y, label, st)
	}

	cur, _ := m.viewer.Current()
	lb := m.labels(cur)
	if m.viewer.Visible(types.RegionHeader) && opacity > 0 {
		r := l.Rects[types.RegionHeader]
		c.text(r.Min.X, r.Min.Y, lb.header, c.style(fadeStyle(TitleStyle, opacity)))
	}
	control(types.RegionClose, closeLabel)
	control(types.RegionName, lb.name)
	control(types.RegionDate, lb.date)
	control(types.RegionSave, saveLabel)
	control(types.RegionMore, moreLabel)

	for _, nav := range []struct {
		r     types.Region
		arrow string
	}{{types.RegionLeftNav, " ‹ "}, {types.RegionRightNav, " › "}} {
		if !m.viewer.Visible(nav.r) || opacity <= 0 {
			continue
		}
		r := l.Rects[nav.r]
		st := c.style(controlStyle(opacity, m.viewer.OverLevel(nav.r), m.viewer.DownLevel(nav.r)))
		c.text(r.Min.X, r.Min.Y+r.Dy()/2, nav.arrow, st)
	}

	if text, op := m.viewer.Toast(); text != "" && op > 0 {
		x := l.Content.Min.X + (l.Content.Dx()-lipgloss.Width(text))/2
		c.text(x, l.Content.Max.Y-1, text, c.style(fadeStyle(ToastStyle, op)))
	}

	out := c.String()
	if m.viewer.Loading() {
		out += "\n" + HelpStyle.Render("loading…")
	} else if m.status != "" {
		out += "\n" + HelpStyle.Render(m.status)
	} else {
		out += "\n" + m.helpLine()
	}
	return out
}

func (m *Model) drawMedia(c *canvas, l interact.Layout) {
	cur, ok := m.viewer.Current()
	if !ok {
		return
	}
	if cur.Kind != types.MediaKindDocument {
		bounds := m.viewer.ContentBounds().Add(l.Content.Min).Intersect(l.Content)
		c.fill(bounds, '░', c.style(mediaStyle()))
		return
	}

	icon := l.Rects[types.RegionIcon]
	st := c.style(controlStyle(1, m.viewer.OverLevel(types.RegionIcon), m.viewer.DownLevel(types.RegionIcon)))
	dl := m.viewer.Download()
	switch {
	case m.viewer.DocumentLoaded():
		c.box(icon, "open", st)
	case dl.Visible:
		spinner := []rune("◐◓◑◒")
		frame := spinner[int(dl.Rotation*float64(len(spinner)))%len(spinner)]
		label := fmt.Sprintf("%c %3.0f%%", frame, dl.Progress*100)
		if dl.Stalled {
			st = c.style(StalledStyle)
		}
		c.box(icon, label, st)
	default:
		c.box(icon, "download", st)
	}
}

func (m *Model) helpLine() string {
	var parts []string
	for _, b := range keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return HelpStyle.Render(strings.Join(parts, " • "))
}
