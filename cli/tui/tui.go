package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the viewer full screen and blocks until it is closed.
func Run(ctx context.Context, opts Options) error {
	m, err := NewModel(ctx, opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	return err
}
