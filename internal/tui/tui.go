// Package tui implements the interactive window picker behind
// `winsight pick`.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winsight/internal/desktop"
)

// Pick runs the picker on the alternate screen until the user focuses a
// window or quits. It returns the focused window, or nil when the user
// quit without choosing.
func Pick(src Source, filter string) (*desktop.WindowDescriptor, error) {
	p := tea.NewProgram(newModel(src, filter), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(model)
	if !ok {
		return nil, nil
	}
	return m.chosen, nil
}
