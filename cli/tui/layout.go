package tui

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/lightbox/interact"
	"github.com/pithecene-io/lightbox/types"
)

const (
	navWidth   = 3
	minWidth   = 24
	minHeight  = 7
	closeLabel = "[x]"
	saveLabel  = "[save]"
	moreLabel  = "[...]"
	iconWidth  = 14
	iconHeight = 3
)

// labels is the text the chrome shows for the current item.
type labels struct {
	header   string
	name     string
	date     string
	document bool
}

func textRect(x, y int, s string) image.Rectangle {
	return image.Rect(x, y, x+lipgloss.Width(s), y+1)
}

// buildLayout places every region for a w×h terminal.
func buildLayout(w, h int, lb labels) interact.Layout {
	var l interact.Layout
	if w < minWidth || h < minHeight {
		return l
	}
	bottom := h - 1

	l.Content = image.Rect(navWidth, 1, w-navWidth, bottom)
	l.Set(types.RegionLeftNav, image.Rect(0, 1, navWidth, bottom), true)
	l.Set(types.RegionRightNav, image.Rect(w-navWidth, 1, w, bottom), true)
	l.Set(types.RegionClose, textRect(w-len(closeLabel), 0, closeLabel), true)
	l.Set(types.RegionHeader, textRect(1, 0, lb.header), lb.header != "")

	name := textRect(1, bottom, lb.name)
	l.Set(types.RegionName, name, lb.name != "")
	l.Set(types.RegionDate, textRect(name.Max.X+2, bottom, lb.date), lb.date != "")

	more := textRect(w-len(moreLabel)-1, bottom, moreLabel)
	l.Set(types.RegionMore, more, true)
	l.Set(types.RegionSave, textRect(more.Min.X-len(saveLabel)-1, bottom, saveLabel), true)

	c := l.Content
	icon := image.Rect(0, 0, iconWidth, iconHeight).Add(image.Pt(
		c.Min.X+(c.Dx()-iconWidth)/2,
		c.Min.Y+(c.Dy()-iconHeight)/2,
	))
	l.Set(types.RegionIcon, icon, lb.document)
	return l
}

type cell struct {
	ch    rune
	style int
}

// canvas is a grid of styled cells rendered row by row.
type canvas struct {
	w, h   int
	cells  []cell
	styles []lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	c := &canvas{
		w:      w,
		h:      h,
		cells:  make([]cell, w*h),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for i := range c.cells {
		c.cells[i].ch = ' '
	}
	return c
}

func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

func (c *canvas) set(x, y int, ch rune, style int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = cell{ch: ch, style: style}
}

func (c *canvas) text(x, y int, s string, style int) {
	for _, ch := range s {
		c.set(x, y, ch, style)
		x++
	}
}

func (c *canvas) fill(r image.Rectangle, ch rune, style int) {
	r = r.Intersect(image.Rect(0, 0, c.w, c.h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.set(x, y, ch, style)
		}
	}
}

// box draws a rounded border around r with label centered inside.
func (c *canvas) box(r image.Rectangle, label string, style int) {
	if r.Dx() < 2 || r.Dy() < 2 {
		return
	}
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', style)
		c.set(x, y1, '─', style)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', style)
		c.set(x1, y, '│', style)
	}
	c.set(x0, y0, '╭', style)
	c.set(x1, y0, '╮', style)
	c.set(x0, y1, '╰', style)
	c.set(x1, y1, '╯', style)

	inner := r.Dx() - 2
	if n := len([]rune(label)); n > inner {
		label = string([]rune(label)[:inner])
	}
	c.text(x0+1+(inner-len([]rune(label)))/2, y0+r.Dy()/2, label, style)
}

func (c *canvas) String() string {
	var b strings.Builder
	var run strings.Builder
	for y := range c.h {
		if y > 0 {
			b.WriteByte('\n')
		}
		cur := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur == 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(c.styles[cur].Render(run.String()))
			}
			run.Reset()
		}
		for x := range c.w {
			cl := c.cells[y*c.w+x]
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteRune(cl.ch)
		}
		flush()
	}
	return b.String()
}
