// Package session owns the hub connection lifecycle and the operator's
// outbound commands. All methods are meant to be called from the UI's single
// update goroutine; nothing here is safe for concurrent use.
package session

import (
	"fmt"

	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/protocol"
)

// Status is the connection state as last reported by the transport.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnected
)

func (s Status) String() string {
	if s == StatusConnected {
		return "connected"
	}
	return "disconnected"
}

// Phase tracks whether inbound event subscriptions are bound.
type Phase int

const (
	// PhaseIdle: Connect has not been called.
	PhaseIdle Phase = iota
	// PhaseAwaitingConnection: the transport is dialing or redialing; inbound
	// events are dropped.
	PhaseAwaitingConnection
	// PhaseSubscribed: the transport reported connected and the subscriber
	// receives events.
	PhaseSubscribed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingConnection:
		return "awaiting-connection"
	case PhaseSubscribed:
		return "subscribed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Transport is the persistent connection the manager drives.
type Transport interface {
	Connect() error
	Emit(name string, payload interface{}) error
	Stop()
}

// Subscriber consumes the typed inbound events.
type Subscriber interface {
	Snapshot(protocol.Snapshot)
	SourceJoined(protocol.SourceJoined)
	SourceLeft(protocol.SourceLeft)
}

// Delivery describes what Deliver did with a backend event.
type Delivery struct {
	StatusChanged bool
	// Event is the decoded event handed to the subscriber, nil when the event
	// was a status change, dropped or not consumed.
	Event protocol.Event
}

// Manager owns the connection status and binds the subscriber only while
// the transport is connected.
type Manager struct {
	transport  Transport
	status     Status
	phase      Phase
	subscriber Subscriber
	active     Subscriber
	lastErr    error
}

// NewManager wraps transport without connecting it.
func NewManager(transport Transport) *Manager {
	return &Manager{transport: transport}
}

// Connect starts the transport. Repeated calls are no-ops.
func (m *Manager) Connect() error {
	if m.phase != PhaseIdle {
		return nil
	}
	if m.transport == nil {
		return fmt.Errorf("connect: no transport configured")
	}
	if err := m.transport.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m.setPhase(PhaseAwaitingConnection)
	return nil
}

// Subscribe records the subscriber. It is bound on the next connect, or
// immediately when already subscribed.
func (m *Manager) Subscribe(sub Subscriber) {
	m.subscriber = sub
	if m.phase == PhaseSubscribed {
		m.active = sub
	}
}

func (m *Manager) Status() Status {
	return m.status
}

func (m *Manager) Phase() Phase {
	return m.phase
}

// LastError returns the most recent transport error, cleared on connect.
func (m *Manager) LastError() error {
	return m.lastErr
}

// Deliver applies one backend event. Decoding failures are returned; they
// never change the connection state.
func (m *Manager) Deliver(evt backend.Event) (Delivery, error) {
	switch evt.Kind {
	case backend.KindConnected:
		m.status = StatusConnected
		m.lastErr = nil
		m.setPhase(PhaseSubscribed)
		m.active = m.subscriber
		return Delivery{StatusChanged: true}, nil
	case backend.KindDisconnected:
		changed := m.status != StatusDisconnected
		m.status = StatusDisconnected
		m.active = nil
		if evt.Err != nil {
			m.lastErr = evt.Err
		}
		if m.phase != PhaseIdle {
			m.setPhase(PhaseAwaitingConnection)
		}
		return Delivery{StatusChanged: changed}, nil
	case backend.KindError:
		m.lastErr = evt.Err
		events.Connection.Error(evt.Err)
		return Delivery{}, nil
	case backend.KindMessage:
		return m.route(evt)
	default:
		return Delivery{}, nil
	}
}

func (m *Manager) route(evt backend.Event) (Delivery, error) {
	if m.phase != PhaseSubscribed || m.active == nil {
		events.Connection.Dropped(evt.Name, m.phase.String())
		return Delivery{}, nil
	}
	decoded, known, err := protocol.Decode(evt.Name, evt.Payload)
	if err != nil {
		return Delivery{}, fmt.Errorf("decode %s: %w", evt.Name, err)
	}
	if !known {
		events.Source.Ignored(evt.Name)
		return Delivery{}, nil
	}
	switch e := decoded.(type) {
	case protocol.Snapshot:
		m.active.Snapshot(e)
	case protocol.SourceJoined:
		m.active.SourceJoined(e)
	case protocol.SourceLeft:
		m.active.SourceLeft(e)
	case protocol.MessageSent:
		events.Command.Acknowledged()
	}
	return Delivery{Event: decoded}, nil
}

// Emit forwards an outbound event to the transport.
func (m *Manager) Emit(name string, payload interface{}) error {
	if m.transport == nil {
		return fmt.Errorf("emit %s: no transport configured", name)
	}
	return m.transport.Emit(name, payload)
}

// Teardown stops the transport and unbinds the subscriber.
func (m *Manager) Teardown() {
	if m.transport != nil {
		m.transport.Stop()
	}
	m.active = nil
	m.status = StatusDisconnected
	m.setPhase(PhaseIdle)
}

func (m *Manager) setPhase(next Phase) {
	if m.phase == next {
		return
	}
	events.Connection.Phase(m.phase.String(), next.String())
	m.phase = next
}
