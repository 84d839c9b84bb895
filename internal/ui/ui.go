package ui

import (
	"context"

	"fwprobe/internal/firewalld"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// RunWithContext starts the read-only zone browser and blocks until the
// user quits or ctx is canceled.
func RunWithContext(ctx context.Context, q firewalld.Querier, opts Options) error {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	model := NewModel(q, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
