package ui

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/protocol"
	"github.com/atomicstack/camview/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModelDoesNotConnect(t *testing.T) {
	transport := &recordingTransport{}
	m := NewModel(session.NewManager(transport), nil, Options{})
	if transport.connects != 0 {
		t.Fatalf("expected no connect before Init, got %d", transport.connects)
	}
	m.Init()
	m.Init()
	if transport.connects != 1 {
		t.Fatalf("expected a single connect across Init calls, got %d", transport.connects)
	}
}

func TestEventsBeforeConnectAreIgnored(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	snapshot(h, [2]string{"a", "Cam1"})
	if h.Model().Sources().Len() != 0 {
		t.Fatalf("expected snapshot dropped before connect")
	}
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	if h.Model().Sources().Len() != 1 {
		t.Fatalf("expected snapshot applied after connect")
	}
}

func TestSnapshotRebuildsPickerInOrder(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"z", "Yard"}, [2]string{"a", "Garage"}, [2]string{"m", "Porch"})
	if got := pickerIDs(h.Model()); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Fatalf("expected snapshot key order, got %v", got)
	}
	snapshot(h, [2]string{"m", "Porch"})
	if got := pickerIDs(h.Model()); !reflect.DeepEqual(got, []string{"m"}) {
		t.Fatalf("expected picker replaced, got %v", got)
	}
}

func TestSelectionFollowsNameAcrossSnapshots(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	press(h, tea.KeyEnter)

	m := h.Model()
	if m.Selection().Name() != "Cam1" {
		t.Fatalf("expected Cam1 selected, got %q", m.Selection().Name())
	}
	if m.Focus() != FocusCompose {
		t.Fatalf("expected focus to move to compose, got %s", m.Focus())
	}
	if src, ok := m.Selection().Resolve(m.Sources()); !ok || src.ID != "a" {
		t.Fatalf("expected a, got %#v", src)
	}

	snapshot(h)
	if _, ok := m.Selection().Resolve(m.Sources()); ok {
		t.Fatalf("expected selection unresolved after empty snapshot")
	}
	if m.Selection().Name() != "Cam1" {
		t.Fatalf("expected the name to survive the empty snapshot")
	}

	snapshot(h, [2]string{"b", "Cam1"})
	if src, ok := m.Selection().Resolve(m.Sources()); !ok || src.ID != "b" {
		t.Fatalf("expected re-resolution to b, got %#v", src)
	}
}

func TestSendToSelectedSource(t *testing.T) {
	h, transport := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"abc", "Cam1"})
	press(h, tea.KeyEnter)
	typeText(h, "smile")
	press(h, tea.KeyEnter)

	if len(transport.emitted) != 1 {
		t.Fatalf("expected one emission, got %d", len(transport.emitted))
	}
	got := transport.emitted[0]
	want := protocol.SendMessage{Message: "smile", SID: "abc"}
	if got.name != protocol.EventSendMessage || got.payload != want {
		t.Fatalf("unexpected emission %#v", got)
	}
	if v := h.Model().compose.Value(); v != "" {
		t.Fatalf("expected compose cleared, got %q", v)
	}
	if h.Model().Notices().Len() != 0 {
		t.Fatalf("expected no notices, got %#v", h.Model().Notices().All())
	}
}

func TestSendWhileDisconnectedQueuesNotice(t *testing.T) {
	h, transport := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"abc", "Cam1"})
	press(h, tea.KeyEnter)
	disconnect(h, errors.New("connection reset"))

	typeText(h, "hello")
	press(h, tea.KeyEnter)

	notices := h.Model().Notices().All()
	if len(notices) != 1 || notices[0].Text != session.NotReadyNotice {
		t.Fatalf("expected exactly the not-ready notice, got %#v", notices)
	}
	if len(transport.emitted) != 0 {
		t.Fatalf("expected no emission while disconnected")
	}
	if v := h.Model().compose.Value(); v != "hello" {
		t.Fatalf("expected compose kept, got %q", v)
	}
}

func TestTransportFailureShowsError(t *testing.T) {
	h, transport := newTestHarness(t, Options{})
	transport.emitErr = backend.ErrOutboundFull
	connect(h)
	snapshot(h, [2]string{"abc", "Cam1"})
	press(h, tea.KeyEnter)
	typeText(h, "hi")
	press(h, tea.KeyEnter)

	if h.Model().errMsg == "" {
		t.Fatalf("expected error on the status line")
	}
	if h.Model().Notices().Len() != 0 {
		t.Fatalf("expected no notice for transport failures")
	}
	if v := h.Model().compose.Value(); v != "hi" {
		t.Fatalf("expected compose kept for retry, got %q", v)
	}
}

func TestChurnRaisesNoticesOnly(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	hubEvent(h, protocol.EventSourceConnected, `{"cam_id":"b","cam_name":"Cam2"}`)
	hubEvent(h, protocol.EventSourceLeft, `{"cam_id":"a","cam_name":"Cam1"}`)

	m := h.Model()
	if got := pickerIDs(m); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected picker untouched by churn, got %v", got)
	}
	texts := []string{}
	for _, n := range m.Notices().All() {
		texts = append(texts, n.Text)
	}
	want := []string{"New source connected: Cam2", "Source disconnected: Cam1"}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("expected %v, got %v", want, texts)
	}

	press(h, tea.KeyCtrlD)
	if m.Notices().Len() != 1 || m.Notices().All()[0].Text != want[1] {
		t.Fatalf("expected oldest notice dismissed, got %#v", m.Notices().All())
	}
	h.Send(noticeExpiredMsg{text: want[1]})
	if m.Notices().Len() != 0 {
		t.Fatalf("expected notice expired, got %#v", m.Notices().All())
	}
}

func TestNoticeExpiryIsScheduledPerNotice(t *testing.T) {
	transport := &recordingTransport{}
	m := NewModel(session.NewManager(transport), nil, Options{NoticeTimeout: time.Hour})
	m.Init()
	m.Update(backendEventMsg{event: backend.Event{Kind: backend.KindConnected}})
	_, cmd := m.Update(backendEventMsg{event: backend.Event{
		Kind:    backend.KindMessage,
		Name:    protocol.EventSourceConnected,
		Payload: []byte(`{"cam_id":"b","cam_name":"Cam2"}`),
	}})
	if cmd == nil {
		t.Fatalf("expected an expiry command for the pushed notice")
	}

	quiet := NewModel(session.NewManager(&recordingTransport{}), nil, Options{})
	if cmd := quiet.scheduleNoticeExpiry("x"); cmd != nil {
		t.Fatalf("expected no expiry when the timeout is disabled")
	}
}

func TestNoticeCapacityDropsOldest(t *testing.T) {
	h, _ := newTestHarness(t, Options{NoticeCapacity: 2})
	connect(h)
	for _, name := range []string{"A", "B", "C"} {
		hubEvent(h, protocol.EventSourceConnected, `{"cam_id":"x","cam_name":"`+name+`"}`)
	}
	all := h.Model().Notices().All()
	if len(all) != 2 || all[0].Text != "New source connected: B" {
		t.Fatalf("expected the two newest notices, got %#v", all)
	}
}

func TestPickerDisabledWhileDisconnected(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	disconnect(h, nil)
	press(h, tea.KeyEnter)
	if h.Model().Selection().IsSet() {
		t.Fatalf("expected no selection while disconnected")
	}
	if h.Model().errMsg == "" {
		t.Fatalf("expected a hint on the status line")
	}
}

func TestTabNeedsSelection(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	press(h, tea.KeyTab)
	if h.Model().Focus() != FocusPicker {
		t.Fatalf("expected compose to stay disabled without a selection")
	}
	press(h, tea.KeyEnter)
	press(h, tea.KeyTab)
	if h.Model().Focus() != FocusPicker {
		t.Fatalf("expected tab to return to the picker")
	}
	press(h, tea.KeyTab)
	if h.Model().Focus() != FocusCompose {
		t.Fatalf("expected tab to reach compose once a source is selected")
	}
	press(h, tea.KeyCtrlX)
	if h.Model().Selection().IsSet() || h.Model().Focus() != FocusPicker {
		t.Fatalf("expected ctrl+x to clear the selection and refocus the picker")
	}
}

func TestDecodeErrorsReachStatusLine(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	connect(h)
	snapshot(h, [2]string{"a", "Cam1"})
	hubEvent(h, protocol.EventSnapshot, `"garbage"`)
	if h.Model().errMsg == "" {
		t.Fatalf("expected decode error surfaced")
	}
	if h.Model().Sources().Len() != 1 {
		t.Fatalf("expected registry kept after a bad snapshot")
	}
}

func TestBackendDoneStopsWaiting(t *testing.T) {
	events := make(chan backend.Event)
	close(events)
	m := NewModel(session.NewManager(&recordingTransport{}), closedSource(events), Options{})
	msg := waitForBackendEvent(m.events)()
	if _, ok := msg.(backendDoneMsg); !ok {
		t.Fatalf("expected backendDoneMsg, got %#v", msg)
	}
	m.Update(msg)
	if m.events != nil {
		t.Fatalf("expected the event source released")
	}
}

type closedSource chan backend.Event

func (c closedSource) Events() <-chan backend.Event { return c }

func TestQuitKeys(t *testing.T) {
	h, _ := newTestHarness(t, Options{})
	_, cmd := h.Model().Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
