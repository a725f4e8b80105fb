package events

import "github.com/atomicstack/camview/internal/logging"

type CommandTracer struct{}

type CommandReason string

const (
	CommandReasonDisconnected CommandReason = "disconnected"
	CommandReasonNoTarget     CommandReason = "no-target"
)

var Command = CommandTracer{}

func (CommandTracer) Send(targetID string, length int) {
	logging.Trace("command.send", map[string]interface{}{"target": targetID, "length": length})
}

func (CommandTracer) Reject(reason CommandReason) {
	logging.Trace("command.reject", map[string]interface{}{"reason": string(reason)})
}

func (CommandTracer) Error(targetID string, err error) {
	if err == nil {
		return
	}
	logging.Trace("command.error", map[string]interface{}{"target": targetID, "error": err.Error()})
}

func (CommandTracer) Acknowledged() {
	logging.Trace("command.ack", nil)
}
