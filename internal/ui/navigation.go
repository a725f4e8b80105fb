package ui

import (
	"fmt"

	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "ctrl+c":
		events.App.Stop("interrupt")
		return tea.Quit
	case "ctrl+d":
		m.dismissOldestNotice()
		return nil
	case "tab", "shift+tab":
		return m.toggleFocus()
	case "ctrl+x":
		m.clearSelection()
		return nil
	}
	if m.focus == FocusCompose {
		return m.handleComposeKey(keyMsg)
	}
	if m.handleFilterInput(keyMsg) {
		return nil
	}
	switch keyMsg.String() {
	case "esc":
		if m.picker.Filter != "" {
			m.editFilter(func() bool { m.picker.SetFilter("", 0); return true })
			events.Filter.Cleared()
			return nil
		}
		events.App.Stop("escape")
		return tea.Quit
	case "enter":
		return m.selectHighlighted()
	case "up", "ctrl+p":
		m.moveCursor(m.picker.MoveCursor(-1))
	case "down", "ctrl+n":
		m.moveCursor(m.picker.MoveCursor(1))
	case "pgup":
		m.moveCursor(m.picker.MoveCursorPage(-1, m.maxVisibleItems()))
	case "pgdown":
		m.moveCursor(m.picker.MoveCursorPage(1, m.maxVisibleItems()))
	case "home":
		m.moveCursor(m.picker.MoveCursorHome())
	case "end":
		m.moveCursor(m.picker.MoveCursorEnd())
	}
	return nil
}

func (m *Model) moveCursor(moved bool) {
	if moved {
		events.UI.PickerCursor(m.picker.Cursor)
	}
	m.syncViewport()
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FocusCompose {
		return m.setFocus(FocusPicker)
	}
	if !m.composeEnabled() {
		m.errMsg = "Select a source before composing a message."
		return nil
	}
	m.errMsg = ""
	return m.setFocus(FocusCompose)
}

// selectHighlighted binds the selection to the highlighted source's name and
// moves focus to the compose line. Sources cannot be picked while the hub is
// unreachable.
func (m *Model) selectHighlighted() tea.Cmd {
	if m.conn.Status() != session.StatusConnected {
		m.errMsg = "Waiting for the hub; sources cannot be picked yet."
		return nil
	}
	item, ok := m.picker.Current()
	if !ok {
		return nil
	}
	src, ok := m.sources.Get(item.ID)
	if !ok {
		return nil
	}
	m.selection.Select(src.Name)
	_, resolved := m.selection.Resolve(m.sources)
	events.Source.Select(src.Name, resolved)
	if m.picker.Filter != "" {
		m.editFilter(func() bool { m.picker.SetFilter("", 0); return true })
	}
	m.errMsg = ""
	return m.setFocus(FocusCompose)
}

func (m *Model) clearSelection() {
	if !m.selection.IsSet() {
		return
	}
	m.selection.Clear()
	events.Source.Select("", false)
	if m.focus == FocusCompose {
		m.setFocus(FocusPicker)
	}
}

func (m *Model) syncViewport() {
	m.picker.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	if m.width > 0 {
		m.compose.Width = m.width - len([]rune(m.compose.Prompt)) - 1
	}
	m.syncViewport()
	return nil
}

// selectionSummary describes the selection for the source panel.
func (m *Model) selectionSummary() (title string, body []string) {
	if !m.selection.IsSet() {
		return "No source selected", []string{"Highlight a source and press enter."}
	}
	name := m.selection.Name()
	src, ok := m.selection.Resolve(m.sources)
	if !ok {
		return name, []string{"Waiting for this source to reconnect."}
	}
	title = fmt.Sprintf("%s (%s)", name, src.ID)
	if !src.HasPicture() {
		return title, []string{"No picture yet."}
	}
	return title, []string{fmt.Sprintf("Latest picture: %s", pictureSize(src.Picture))}
}
