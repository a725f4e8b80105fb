package ui

import (
	"unicode"

	"github.com/atomicstack/camview/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

// editFilter applies one filter mutation and reports whether it changed
// anything. The picker viewport is resynced and the caret blink restarted.
func (m *Model) editFilter(edit func() bool) bool {
	before := m.picker.FilterCursorPos()
	if !edit() {
		return false
	}
	if before != m.picker.FilterCursorPos() {
		m.filterCursorDirty = true
	}
	m.syncViewport()
	return true
}

// handleFilterInput edits the picker filter. It returns false for keys that
// belong to navigation.
func (m *Model) handleFilterInput(msg tea.KeyMsg) bool {
	p := m.picker
	switch msg.String() {
	case "ctrl+u":
		if p.Filter == "" {
			return false
		}
		m.editFilter(func() bool { p.SetFilter("", 0); return true })
		events.Filter.Cleared()
		return true
	case "ctrl+w":
		if !m.editFilter(p.DeleteFilterWordBackward) {
			return false
		}
		events.Filter.WordBackspace(p.Filter)
		return true
	case "ctrl+a":
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursorTo(0) })
	case "ctrl+e":
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursorTo(-1) })
	case "alt+b":
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursorWord(false) })
	case "alt+f":
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursorWord(true) })
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		if !m.editFilter(p.DeleteFilterRuneBackward) {
			return false
		}
		events.Filter.Backspace(p.Filter)
		return true
	case tea.KeyRunes, tea.KeySpace:
		if msg.Alt {
			return false
		}
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		for _, r := range text {
			if unicode.IsControl(r) {
				return false
			}
		}
		if !m.editFilter(func() bool { return p.InsertFilterText(text) }) {
			return false
		}
		events.Filter.Append(p.Filter)
		return true
	case tea.KeyLeft:
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursor(-1) })
	case tea.KeyRight:
		return m.moveFilterCaret(func() bool { return p.MoveFilterCursor(1) })
	}
	return false
}

func (m *Model) moveFilterCaret(move func() bool) bool {
	if !m.editFilter(move) {
		return false
	}
	events.Filter.Cursor(m.picker.FilterCursor)
	return true
}

func (m *Model) filterPrompt() string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	text := m.picker.Filter
	if text == "" {
		placeholder := []rune("(type to filter sources)")
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		caret := m.renderFilterCursor(string(placeholder[0]))
		return prompt + caret + render(styles.FilterPlaceholder, string(placeholder[1:]))
	}
	runes := []rune(text)
	pos := m.picker.FilterCursorPos()
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	before := render(styles.Filter, string(runes[:pos]))
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy().Inline(true)
	if m.filterCursor.Blink || m.focus != FocusPicker {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		cursorStyle := styles.Cursor.Copy().Inline(true)
		return base.Inherit(cursorStyle).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
