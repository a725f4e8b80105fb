package backend

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/camview/internal/testutil"
	"github.com/cenkalti/backoff/v5"
)

const waitTimeout = 3 * time.Second

func newTestWatcher(t *testing.T, hub *testutil.Hub) *Watcher {
	t.Helper()
	w := NewWatcher(Config{
		Endpoint:         hub.URL(),
		HandshakeTimeout: time.Second,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(10 * time.Millisecond)
		},
	})
	t.Cleanup(func() {
		w.Stop()
		w.Wait()
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher, kind Kind) Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case evt, ok := <-w.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", kind)
			}
			if evt.Kind == kind {
				return evt
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s event", kind)
		}
	}
}

func TestWatcherDoesNotDialBeforeConnect(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	time.Sleep(50 * time.Millisecond)
	if hub.Accepted() != 0 {
		t.Fatalf("expected no session before Connect, got %d", hub.Accepted())
	}
	if err := w.Emit("send_message", nil); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestWatcherConnectIsIdempotent(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := w.Connect(); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	nextEvent(t, w, KindConnected)
	if !w.Connected() {
		t.Fatalf("expected watcher to report connected")
	}
	time.Sleep(50 * time.Millisecond)
	if hub.Accepted() != 1 {
		t.Fatalf("expected exactly one session, got %d", hub.Accepted())
	}
}

func TestWatcherPublishesHubEvents(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	nextEvent(t, w, KindConnected)

	hub.SendRaw(`42["picture",{"a":{"id":"a","name":"Cam1","picture":""}}]`)
	evt := nextEvent(t, w, KindMessage)
	if evt.Name != "picture" {
		t.Fatalf("expected picture event, got %q", evt.Name)
	}
	if string(evt.Payload) != `{"a":{"id":"a","name":"Cam1","picture":""}}` {
		t.Fatalf("unexpected payload %s", evt.Payload)
	}

	hub.SendRaw(`42/other,["picture",{}]`)
	hub.SendRaw(`42["message_sent"]`)
	evt = nextEvent(t, w, KindMessage)
	if evt.Name != "message_sent" || evt.Payload != nil {
		t.Fatalf("expected argument-less message_sent from default namespace, got %#v", evt)
	}
}

func TestWatcherEmitsOutboundEvents(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	nextEvent(t, w, KindConnected)

	payload := map[string]string{"message": "hi", "sid": "abc"}
	if err := w.Emit("send_message", payload); err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := hub.Next(waitTimeout, false)
	if got != `42["send_message",{"message":"hi","sid":"abc"}]` {
		t.Fatalf("unexpected frame %q", got)
	}
}

func TestWatcherAnswersPings(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	nextEvent(t, w, KindConnected)
	hub.Ping()
	if got := hub.Next(waitTimeout, true); got != "3" {
		t.Fatalf("expected pong, got %q", got)
	}
}

func TestWatcherReconnectsAfterDrop(t *testing.T) {
	hub := testutil.NewHub(t)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	nextEvent(t, w, KindConnected)
	hub.AwaitJoin(waitTimeout)

	hub.DropAll()
	disc := nextEvent(t, w, KindDisconnected)
	if disc.Err == nil {
		t.Fatalf("expected disconnect to carry the transport error")
	}
	nextEvent(t, w, KindConnected)
	if hub.Accepted() < 2 {
		t.Fatalf("expected a second session, got %d", hub.Accepted())
	}
}

func TestWatcherReportsRefusedNamespace(t *testing.T) {
	hub := testutil.NewHub(t)
	hub.RefuseNamespace(true)
	w := newTestWatcher(t, hub)
	if err := w.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	evt := nextEvent(t, w, KindError)
	if evt.Err == nil || !strings.Contains(evt.Err.Error(), "refused") {
		t.Fatalf("expected refusal error, got %v", evt.Err)
	}
}

func TestStopWithoutConnectClosesEvents(t *testing.T) {
	w := NewWatcher(Config{Endpoint: "ws://127.0.0.1:1/socket.io/"})
	w.Stop()
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Fatalf("expected closed events channel")
		}
	case <-time.After(waitTimeout):
		t.Fatalf("events channel not closed")
	}
	if err := w.Connect(); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
