// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the transport UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI and blocks until the user quits.
func Run(transport Transport, session string) error {
	p := tea.NewProgram(NewModel(transport, session), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
