package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/lightbox/viewer"
)

// keyMap defines key bindings.
type keyMap struct {
	Quit       key.Binding
	Close      key.Binding
	Prev       key.Binding
	Next       key.Binding
	Save       key.Binding
	Copy       key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ZoomReset  key.Binding
	Open       key.Binding
	HideChrome key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "backspace", "h"),
		key.WithHelp("←", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", " ", "space", "l"),
		key.WithHelp("→", "next"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "copy"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	ZoomReset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "fit"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	HideChrome: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "hide controls"),
	),
}

// viewerKey maps a key press to a viewer command.
func (k keyMap) viewerKey(msg tea.KeyMsg) viewer.Key {
	switch {
	case key.Matches(msg, k.Close):
		return viewer.KeyEscape
	case key.Matches(msg, k.Prev):
		return viewer.KeyPrev
	case key.Matches(msg, k.Next):
		return viewer.KeyNext
	case key.Matches(msg, k.Save):
		return viewer.KeySave
	case key.Matches(msg, k.Copy):
		return viewer.KeyCopy
	case key.Matches(msg, k.ZoomIn):
		return viewer.KeyZoomIn
	case key.Matches(msg, k.ZoomOut):
		return viewer.KeyZoomOut
	case key.Matches(msg, k.ZoomReset):
		return viewer.KeyZoomReset
	case key.Matches(msg, k.Open):
		return viewer.KeyOpen
	case key.Matches(msg, k.HideChrome):
		return viewer.KeyHideChrome
	}
	return viewer.KeyNone
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.ZoomIn, k.ZoomOut, k.Save, k.Close, k.Quit}
}
