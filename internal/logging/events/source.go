package events

import "github.com/atomicstack/camview/internal/logging"

type SourceTracer struct{}

var Source = SourceTracer{}

func (SourceTracer) Snapshot(count, skipped int) {
	logging.Trace("source.snapshot", map[string]interface{}{"count": count, "skipped": skipped})
}

func (SourceTracer) Joined(id, name string) {
	logging.Trace("source.joined", map[string]interface{}{"id": id, "name": name})
}

func (SourceTracer) Left(id, name string) {
	logging.Trace("source.left", map[string]interface{}{"id": id, "name": name})
}

func (SourceTracer) Select(name string, resolved bool) {
	logging.Trace("source.select", map[string]interface{}{"name": name, "resolved": resolved})
}

func (SourceTracer) Ignored(event string) {
	logging.Trace("source.ignored", map[string]interface{}{"event": event})
}
