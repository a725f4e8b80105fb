package ui

import (
	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/logging"
	"github.com/atomicstack/camview/internal/session"
	uistate "github.com/atomicstack/camview/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

func waitForBackendEvent(src EventSource) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-src.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.events != nil {
		return tea.Batch(cmd, waitForBackendEvent(m.events))
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.events = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	res := m.dispatcher.Handle(evt)
	if res.Err != nil {
		logging.Error(res.Err)
		m.setError(res.Err)
	}
	if res.StatusChanged {
		if m.conn.Status() == session.StatusConnected {
			m.everConnected = true
			m.errMsg = ""
		} else if m.focus == FocusCompose && !m.selection.IsSet() {
			m.setFocus(FocusPicker)
		}
	}
	if res.SourcesUpdated {
		m.refreshPicker()
	}
	return m.scheduleNoticeExpiry(res.Notices...)
}

// refreshPicker rebuilds the picker rows from the registry, keeping the
// highlighted source when it is still present.
func (m *Model) refreshPicker() {
	m.picker.UpdateItems(sourceItems(m))
	m.syncViewport()
}

func sourceItems(m *Model) []uistate.Item {
	all := m.sources.All()
	items := make([]uistate.Item, 0, len(all))
	for _, src := range all {
		detail := "no picture yet"
		if src.HasPicture() {
			detail = pictureSize(src.Picture)
		}
		label := src.Name
		if label == "" {
			label = "(unnamed)"
		}
		items = append(items, uistate.Item{ID: src.ID, Label: label, Detail: detail})
	}
	return items
}

// pictureSize renders the size of the encoded picture payload.
func pictureSize(picture string) string {
	return humanize.Bytes(uint64(len(picture)))
}
