package events

import (
	"time"

	"github.com/atomicstack/camview/internal/logging"
)

type ConnectionTracer struct{}

var Connection = ConnectionTracer{}

func (ConnectionTracer) Dial(endpoint, namespace string) {
	logging.Trace("connection.dial", map[string]interface{}{"endpoint": endpoint, "namespace": namespace})
}

func (ConnectionTracer) Connected(endpoint, namespace string) {
	logging.Trace("connection.connected", map[string]interface{}{"endpoint": endpoint, "namespace": namespace})
}

func (ConnectionTracer) Disconnected(endpoint string, err error) {
	payload := map[string]interface{}{"endpoint": endpoint}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("connection.disconnected", payload)
}

func (ConnectionTracer) Retry(endpoint string, delay time.Duration) {
	logging.Trace("connection.retry", map[string]interface{}{"endpoint": endpoint, "delay": delay.String()})
}

func (ConnectionTracer) GiveUp(endpoint string) {
	logging.Trace("connection.give-up", map[string]interface{}{"endpoint": endpoint})
}

func (ConnectionTracer) Phase(from, to string) {
	logging.Trace("connection.phase", map[string]interface{}{"from": from, "to": to})
}

func (ConnectionTracer) Dropped(event, phase string) {
	logging.Trace("connection.dropped", map[string]interface{}{"event": event, "phase": phase})
}

func (ConnectionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("connection.error", map[string]interface{}{"error": err.Error()})
}
