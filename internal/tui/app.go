package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsight/internal/desktop"
)

// Source is the part of desktop.Registry the picker needs.
type Source interface {
	ListWindows(filter string) ([]desktop.WindowDescriptor, error)
	FocusHandle(handle uint64) (desktop.WindowDescriptor, error)
}

// windowItem is a list item wrapping one visible window.
type windowItem struct {
	win desktop.WindowDescriptor
}

func (i windowItem) Title() string {
	if i.win.IsActive {
		return activeMark + " " + i.win.Title
	}
	return inactiveMark + " " + i.win.Title
}

func (i windowItem) Description() string {
	b := i.win.Bounds
	desc := fmt.Sprintf("%#x  %s  %dx%d at %d,%d", i.win.Handle, i.win.State, i.win.Width, i.win.Height, b.Left, b.Top)
	if i.win.PID != 0 {
		desc += fmt.Sprintf("  pid %d", i.win.PID)
	}
	return desc
}

func (i windowItem) FilterValue() string { return i.win.Title }

// windowsMsg carries the result of a window enumeration.
type windowsMsg struct {
	windows []desktop.WindowDescriptor
	err     error
}

// focusedMsg carries the result of focusing the selected window.
type focusedMsg struct {
	win desktop.WindowDescriptor
	err error
}

// model is the root bubbletea model for the window picker.
type model struct {
	src    Source
	filter string

	list  list.Model
	count int
	err   error

	chosen *desktop.WindowDescriptor

	width  int
	height int
}

func newModel(src Source, filter string) model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = listTitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return model{src: src, filter: filter, list: l}
}

func (m model) load() tea.Cmd {
	src, filter := m.src, m.filter
	return func() tea.Msg {
		windows, err := src.ListWindows(filter)
		return windowsMsg{windows: windows, err: err}
	}
}

func (m model) focus(handle uint64) tea.Cmd {
	src := m.src
	return func() tea.Msg {
		win, err := src.FocusHandle(handle)
		return focusedMsg{win: win, err: err}
	}
}

// contentHeight returns the height left for the list between the bars.
func (m model) contentHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.contentHeight())
		return m, nil

	case windowsMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.windows))
		for _, w := range msg.windows {
			items = append(items, windowItem{win: w})
		}
		m.count = len(items)
		return m, m.list.SetItems(items)

	case focusedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		win := msg.win
		m.chosen = &win
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The filter input owns the keyboard while it is open.
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "esc":
				if m.list.FilterState() == list.FilterApplied {
					break
				}
				return m, tea.Quit
			case "q":
				return m, tea.Quit
			case "r":
				return m, m.load()
			case "enter":
				if item, ok := m.list.SelectedItem().(windowItem); ok {
					return m, m.focus(item.win.Handle)
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.count, m.err, m.width),
		m.list.View(),
		renderHelpBar(m.width),
	)
}
