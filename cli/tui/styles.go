// Package tui runs the media viewer in a terminal with Bubble Tea.
//
// Controls fade with the viewer's chrome opacity, hover and press levels
// brighten them, and mouse, wheel and keys are forwarded to the viewer.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	mutedColor     = lipgloss.Color("#6B7280") // Gray
)

type rgb struct{ r, g, b float64 }

var (
	backdrop  = rgb{0x11, 0x11, 0x11}
	chromeFg  = rgb{0xD1, 0xD5, 0xDB}
	hoveredFg = rgb{0xFF, 0xFF, 0xFF}
	pressedBg = rgb{0x37, 0x41, 0x51}
	mediaFg   = rgb{0x6B, 0x72, 0x80}
)

// Styles for static elements.
var (
	// HelpStyle for the key help line.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// ToastStyle for the saved-file toast.
	ToastStyle = lipgloss.NewStyle().
			Bold(true)

	// StalledStyle marks a download that stopped making progress.
	StalledStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// TitleStyle for the header scope label.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)
)

// mix returns a + (b-a)*t.
func mix(a, b rgb, t float64) rgb {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return rgb{
		r: a.r + (b.r-a.r)*t,
		g: a.g + (b.g-a.g)*t,
		b: a.b + (b.b-a.b)*t,
	}
}

func (c rgb) color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", uint8(c.r+0.5), uint8(c.g+0.5), uint8(c.b+0.5)))
}

// controlStyle styles a chrome control at the given chrome opacity and
// hover and press levels.
func controlStyle(opacity, over, down float64) lipgloss.Style {
	fg := mix(chromeFg, hoveredFg, over)
	s := lipgloss.NewStyle().Foreground(mix(backdrop, fg, opacity).color())
	if down > 0 {
		s = s.Background(mix(backdrop, pressedBg, down*opacity).color())
	}
	if over >= 0.5 {
		s = s.Bold(true)
	}
	return s
}

// fadeStyle styles text fading in over the backdrop.
func fadeStyle(base lipgloss.Style, opacity float64) lipgloss.Style {
	return base.Foreground(mix(backdrop, hoveredFg, opacity).color())
}

func mediaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(mediaFg.color())
}
