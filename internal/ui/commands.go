package ui

import (
	"github.com/atomicstack/camview/internal/logging"
	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const composeCharLimit = 500

func newComposeInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "✉ "
	in.Placeholder = "message for the selected source"
	in.CharLimit = composeCharLimit
	if styles.ComposePrompt != nil {
		in.PromptStyle = styles.ComposePrompt.Copy()
	}
	if styles.Cursor != nil {
		in.Cursor.Style = styles.Cursor.Copy()
	}
	return in
}

// composeEnabled reports whether the compose line accepts focus. It needs a
// selected name; connectivity is checked when sending.
func (m *Model) composeEnabled() bool {
	return m.selection.IsSet()
}

// sendCompose hands the compose buffer to the sender. Rejections queue a
// notice; transport failures land on the status line.
func (m *Model) sendCompose() tea.Cmd {
	res := m.sender.Send(&m.compose, m.sources, &m.selection)
	if res.Err != nil {
		logging.Error(res.Err)
		m.setError(res.Err)
		return nil
	}
	if res.Sent {
		m.errMsg = ""
		return nil
	}
	return m.scheduleNoticeExpiry(res.Notice)
}

func (m *Model) setFocus(target Focus) tea.Cmd {
	if m.focus == target {
		return nil
	}
	m.focus = target
	events.UI.Focus(target.String())
	if target == FocusCompose {
		m.filterCursor.Blur()
		return m.compose.Focus()
	}
	m.compose.Blur()
	return m.filterCursor.Focus()
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.sendCompose()
	case "esc":
		return m.setFocus(FocusPicker)
	}
	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return cmd
}
