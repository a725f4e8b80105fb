package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/protocol"
	"github.com/atomicstack/camview/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

type emission struct {
	name    string
	payload interface{}
}

type recordingTransport struct {
	connects int
	stopped  bool
	emitErr  error
	emitted  []emission
}

func (r *recordingTransport) Connect() error {
	r.connects++
	return nil
}

func (r *recordingTransport) Emit(name string, payload interface{}) error {
	if r.emitErr != nil {
		return r.emitErr
	}
	r.emitted = append(r.emitted, emission{name: name, payload: payload})
	return nil
}

func (r *recordingTransport) Stop() {
	r.stopped = true
}

func newTestHarness(t *testing.T, opts Options) (*Harness, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	model := NewModel(session.NewManager(transport), nil, opts)
	h := NewHarness(model)
	h.Start()
	return h, transport
}

func connect(h *Harness) {
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindConnected}})
}

func disconnect(h *Harness, err error) {
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindDisconnected, Err: err}})
}

func hubEvent(h *Harness, name, payload string) {
	h.Send(backendEventMsg{event: backend.Event{Kind: backend.KindMessage, Name: name, Payload: []byte(payload)}})
}

func snapshot(h *Harness, entries ...[2]string) {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%q:{\"id\":%q,\"name\":%q,\"picture\":\"\"}", e[0], e[0], e[1])
	}
	hubEvent(h, protocol.EventSnapshot, "{"+strings.Join(parts, ",")+"}")
}

func typeText(h *Harness, text string) {
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func press(h *Harness, k tea.KeyType) {
	h.Send(tea.KeyMsg{Type: k})
}

func pickerIDs(m *Model) []string {
	ids := make([]string, 0, len(m.picker.Items))
	for _, item := range m.picker.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func stripANSI(s string) string {
	return ansi.Strip(s)
}
