package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"seoboard/internal/assist"
	"seoboard/internal/engine"
)

// RunBoard opens the interactive board. A nil assistant disables suggest and analyze.
func RunBoard(ctx context.Context, svc *engine.Service, assistant assist.Assistant, out io.Writer) error {
	m := newBoardModel(ctx, svc, assistant)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
