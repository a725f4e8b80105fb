package ui

import (
	"time"

	"github.com/atomicstack/camview/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// noticeExpiredMsg fires once per pushed notice after the notice timeout.
type noticeExpiredMsg struct {
	text string
}

func (m *Model) scheduleNoticeExpiry(texts ...string) tea.Cmd {
	if m.noticeTimeout <= 0 || len(texts) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(texts))
	for _, text := range texts {
		text := text
		cmds = append(cmds, tea.Tick(m.noticeTimeout, func(time.Time) tea.Msg {
			return noticeExpiredMsg{text: text}
		}))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleNoticeExpiredMsg(msg tea.Msg) tea.Cmd {
	expired, ok := msg.(noticeExpiredMsg)
	if !ok {
		return nil
	}
	removed := m.notices.Expire(expired.text)
	events.Notice.Expire(expired.text, removed)
	return nil
}

// dismissOldestNotice removes every notice sharing the oldest notice's text.
func (m *Model) dismissOldestNotice() {
	all := m.notices.All()
	if len(all) == 0 {
		return
	}
	text := all[0].Text
	removed := m.notices.Dismiss(text)
	events.Notice.Dismiss(text, removed)
}
