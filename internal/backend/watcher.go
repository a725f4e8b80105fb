package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/socketio"
	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
)

// Kind represents the type of event emitted by the backend watcher.
type Kind int

const (
	KindConnected Kind = iota
	KindDisconnected
	KindMessage
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	case KindMessage:
		return "message"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event conveys a connection transition, an inbound hub event or a transport error.
type Event struct {
	Kind Kind
	// Name and Payload are set for KindMessage; Payload is the event's first
	// argument as raw JSON and may be nil.
	Name    string
	Payload []byte
	Err     error
}

var (
	// ErrNotConnected is returned by Emit while no hub session is live.
	ErrNotConnected = errors.New("backend: not connected")
	// ErrOutboundFull is returned by Emit when the write queue is saturated.
	ErrOutboundFull = errors.New("backend: outbound queue full")
	// ErrStopped is returned by Connect after Stop.
	ErrStopped = errors.New("backend: watcher stopped")

	errServerClosed    = errors.New("hub closed the connection")
	errNamespaceClosed = errors.New("hub disconnected the namespace")
)

const (
	defaultHandshakeTimeout = 5 * time.Second
	outboundQueueSize       = 16
	eventQueueSize          = 16
)

// Config describes how the watcher reaches the hub.
type Config struct {
	// Endpoint is the websocket URL, typically produced by ResolveEndpoint.
	Endpoint  string
	Namespace string
	// HandshakeTimeout bounds the websocket upgrade and the Engine.IO/Socket.IO handshake.
	HandshakeTimeout time.Duration
	// NewBackOff supplies the reconnect policy; nil uses an exponential backoff.
	NewBackOff func() backoff.BackOff
}

// Watcher keeps one websocket session to the hub alive, reconnecting with
// backoff, and publishes what it sees on a single ordered channel.
type Watcher struct {
	endpoint         string
	namespace        string
	handshakeTimeout time.Duration
	newBackOff       func() backoff.BackOff
	dialer           *websocket.Dialer

	ctx    context.Context
	cancel context.CancelFunc

	events    chan Event
	outbound  chan []byte
	connected atomic.Bool
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher creates a watcher. It does not dial until Connect is called.
func NewWatcher(cfg Config) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = socketio.DefaultNamespace
	}
	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}
	newBackOff := cfg.NewBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	return &Watcher{
		endpoint:         cfg.Endpoint,
		namespace:        namespace,
		handshakeTimeout: timeout,
		newBackOff:       newBackOff,
		dialer:           &websocket.Dialer{HandshakeTimeout: timeout},
		ctx:              ctx,
		cancel:           cancel,
		events:           make(chan Event, eventQueueSize),
		outbound:         make(chan []byte, outboundQueueSize),
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 15 * time.Second
	return b
}

// Connect starts the dial loop. Calling it again is a no-op.
func (w *Watcher) Connect() error {
	if w.ctx.Err() != nil {
		return ErrStopped
	}
	w.startOnce.Do(func() {
		events.Connection.Dial(w.endpoint, w.namespace)
		w.wg.Add(1)
		go w.run()
		go func() {
			w.wg.Wait()
			close(w.events)
		}()
	})
	return nil
}

// Events returns a channel of backend events. It is closed once the watcher
// has stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Connected reports whether a hub session is currently live.
func (w *Watcher) Connected() bool {
	return w.connected.Load()
}

// Emit queues an event for the hub. Delivery is best-effort.
func (w *Watcher) Emit(name string, payload interface{}) error {
	if !w.connected.Load() {
		return ErrNotConnected
	}
	frame, err := socketio.EncodeEvent(w.namespace, name, payload)
	if err != nil {
		return err
	}
	select {
	case w.outbound <- frame:
		return nil
	default:
		return ErrOutboundFull
	}
}

// Stop cancels the watcher. If Connect was never called the events channel is
// closed immediately; otherwise use Wait for a clean drain.
func (w *Watcher) Stop() {
	w.cancel()
	w.startOnce.Do(func() {
		close(w.events)
	})
}

// Wait blocks until the dial loop has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	policy := w.newBackOff()
	for {
		wasConnected, err := w.session()
		if w.ctx.Err() != nil {
			return
		}
		if wasConnected {
			policy.Reset()
		}
		if err != nil && !wasConnected {
			w.publish(Event{Kind: KindError, Err: err})
		}
		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			events.Connection.GiveUp(w.endpoint)
			return
		}
		events.Connection.Retry(w.endpoint, delay)
		timer := time.NewTimer(delay)
		select {
		case <-w.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials, joins the namespace and pumps frames until the connection
// ends. It reports whether the namespace was ever joined.
func (w *Watcher) session() (bool, error) {
	conn, _, err := w.dialer.DialContext(w.ctx, w.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", w.endpoint, err)
	}
	defer conn.Close()
	stopClose := context.AfterFunc(w.ctx, func() { conn.Close() })
	defer stopClose()

	liveness, err := w.handshake(conn)
	if err != nil {
		return false, err
	}

	w.drainOutbound()
	w.connected.Store(true)
	events.Connection.Connected(w.endpoint, w.namespace)
	w.publish(Event{Kind: KindConnected})

	readErr := make(chan error, 1)
	pongs := make(chan struct{}, 1)
	go func() {
		readErr <- w.readLoop(conn, liveness, pongs)
	}()

	err = w.writeLoop(conn, readErr, pongs)
	w.connected.Store(false)
	w.drainOutbound()
	if w.ctx.Err() != nil {
		return true, nil
	}
	events.Connection.Disconnected(w.endpoint, err)
	w.publish(Event{Kind: KindDisconnected, Err: err})
	return true, err
}

// handshake consumes the Engine.IO open packet and joins the namespace. It
// returns the read deadline implied by the hub's ping settings.
func (w *Watcher) handshake(conn *websocket.Conn) (time.Duration, error) {
	deadline := time.Now().Add(w.handshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("read open packet: %w", err)
	}
	frame, err := socketio.DecodeFrame(msg)
	if err != nil {
		return 0, err
	}
	if frame.Engine != socketio.EngineOpen {
		return 0, fmt.Errorf("%w: expected open packet, got %q", socketio.ErrMalformedPacket, byte(frame.Engine))
	}
	info, err := socketio.DecodeOpen(frame.Payload)
	if err != nil {
		return 0, err
	}

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return 0, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, socketio.ConnectPacket(w.namespace)); err != nil {
		return 0, fmt.Errorf("join namespace %s: %w", w.namespace, err)
	}
	if err := conn.SetWriteDeadline(time.Time{}); err != nil {
		return 0, err
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("await namespace ack: %w", err)
		}
		frame, err := socketio.DecodeFrame(msg)
		if err != nil {
			return 0, err
		}
		if frame.Engine == socketio.EnginePing {
			if err := conn.WriteMessage(websocket.TextMessage, socketio.EncodeEngine(socketio.EnginePong)); err != nil {
				return 0, err
			}
			continue
		}
		if frame.Engine != socketio.EngineMessage || frame.Packet.Namespace != w.namespace {
			continue
		}
		switch frame.Packet.Type {
		case socketio.PacketConnect:
			var liveness time.Duration
			if info.PingInterval > 0 {
				liveness = time.Duration(info.PingInterval+info.PingTimeout) * time.Millisecond
			}
			return liveness, conn.SetReadDeadline(time.Time{})
		case socketio.PacketConnectError:
			return 0, fmt.Errorf("hub refused namespace %s: %s", w.namespace, string(frame.Packet.Data))
		}
	}
}

func (w *Watcher) readLoop(conn *websocket.Conn, liveness time.Duration, pongs chan<- struct{}) error {
	for {
		if liveness > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(liveness)); err != nil {
				return err
			}
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		frame, err := socketio.DecodeFrame(msg)
		if err != nil {
			w.publish(Event{Kind: KindError, Err: err})
			continue
		}
		switch frame.Engine {
		case socketio.EnginePing:
			select {
			case pongs <- struct{}{}:
			default:
			}
		case socketio.EngineClose:
			return errServerClosed
		case socketio.EngineMessage:
			pkt := frame.Packet
			if pkt.Namespace != w.namespace {
				continue
			}
			switch pkt.Type {
			case socketio.PacketDisconnect:
				return errNamespaceClosed
			case socketio.PacketEvent:
				name, args, err := socketio.EventArgs(pkt.Data)
				if err != nil {
					w.publish(Event{Kind: KindError, Err: err})
					continue
				}
				var payload []byte
				if len(args) > 0 {
					payload = args[0]
				}
				if !w.publish(Event{Kind: KindMessage, Name: name, Payload: payload}) {
					return w.ctx.Err()
				}
			}
		}
	}
}

func (w *Watcher) writeLoop(conn *websocket.Conn, readErr <-chan error, pongs <-chan struct{}) error {
	for {
		select {
		case <-w.ctx.Done():
			_ = conn.WriteMessage(websocket.TextMessage, socketio.DisconnectPacket(w.namespace))
			conn.Close()
			<-readErr
			return w.ctx.Err()
		case err := <-readErr:
			return err
		case <-pongs:
			if err := conn.WriteMessage(websocket.TextMessage, socketio.EncodeEngine(socketio.EnginePong)); err != nil {
				conn.Close()
				<-readErr
				return fmt.Errorf("write pong: %w", err)
			}
		case frame := <-w.outbound:
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				conn.Close()
				<-readErr
				return fmt.Errorf("write event: %w", err)
			}
		}
	}
}

// drainOutbound discards frames queued for a session that is gone.
func (w *Watcher) drainOutbound() {
	for {
		select {
		case <-w.outbound:
		default:
			return
		}
	}
}

func (w *Watcher) publish(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
