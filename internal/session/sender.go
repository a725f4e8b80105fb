package session

import (
	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/protocol"
	"github.com/atomicstack/camview/internal/state"
)

// NotReadyNotice is pushed when a message cannot be sent.
const NotReadyNotice = "Connect to the hub and select a source first."

// Input is the operator's transient message buffer.
type Input interface {
	Value() string
	Reset()
}

// SendResult reports the outcome of Send.
type SendResult struct {
	Sent     bool
	TargetID string
	// Notice is the text queued when the preconditions failed.
	Notice string
	// Err is the transport error when the emit itself failed.
	Err error
}

// Sender emits operator messages to the selected source.
type Sender struct {
	conn    *Manager
	notices *state.Notices
}

func NewSender(conn *Manager, notices *state.Notices) *Sender {
	return &Sender{conn: conn, notices: notices}
}

// Send emits one send_message for the selected source and resets in. When
// the hub is not connected or the selection does not resolve, it queues
// NotReadyNotice instead and leaves in untouched.
func (s *Sender) Send(in Input, reg *state.Registry, sel *state.Selection) SendResult {
	if s.conn.Status() != StatusConnected {
		return s.reject(events.CommandReasonDisconnected)
	}
	target, ok := sel.Resolve(reg)
	if !ok {
		return s.reject(events.CommandReasonNoTarget)
	}
	message := in.Value()
	payload := protocol.SendMessage{Message: message, SID: target.ID}
	if err := s.conn.Emit(protocol.EventSendMessage, payload); err != nil {
		events.Command.Error(target.ID, err)
		return SendResult{TargetID: target.ID, Err: err}
	}
	in.Reset()
	events.Command.Send(target.ID, len(message))
	return SendResult{Sent: true, TargetID: target.ID}
}

func (s *Sender) reject(reason events.CommandReason) SendResult {
	dropped := s.notices.Push(NotReadyNotice)
	events.Notice.Push(NotReadyNotice, dropped)
	events.Command.Reject(reason)
	return SendResult{Notice: NotReadyNotice}
}
