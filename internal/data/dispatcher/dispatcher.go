package dispatcher

import (
	"github.com/atomicstack/camview/internal/backend"
	"github.com/atomicstack/camview/internal/logging/events"
	"github.com/atomicstack/camview/internal/protocol"
	"github.com/atomicstack/camview/internal/session"
	"github.com/atomicstack/camview/internal/state"
)

// Result summarises what one backend event changed.
type Result struct {
	StatusChanged  bool
	SourcesUpdated bool
	// Notices lists the texts queued while handling the event, in order.
	Notices []string
	Err     error
}

// Dispatcher reconciles inbound hub events into the source registry and the
// notice queue. Snapshots are the only thing that changes registry
// membership; churn events only raise notices.
type Dispatcher struct {
	conn    *session.Manager
	sources *state.Registry
	notices *state.Notices
	pending Result
}

// New builds a dispatcher and subscribes it to conn.
func New(conn *session.Manager, sources *state.Registry, notices *state.Notices) *Dispatcher {
	d := &Dispatcher{conn: conn, sources: sources, notices: notices}
	conn.Subscribe(d)
	return d
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	d.pending = Result{}
	delivery, err := d.conn.Deliver(evt)
	res := d.pending
	d.pending = Result{}
	res.StatusChanged = delivery.StatusChanged
	res.Err = err
	return res
}

func (d *Dispatcher) Snapshot(snap protocol.Snapshot) {
	d.sources.ApplySnapshot(snap.Sources)
	events.Source.Snapshot(len(snap.Sources), snap.Skipped)
	d.pending.SourcesUpdated = true
}

func (d *Dispatcher) SourceJoined(evt protocol.SourceJoined) {
	events.Source.Joined(evt.ID, evt.Name)
	d.push(protocol.JoinedNotice(evt.Name))
}

func (d *Dispatcher) SourceLeft(evt protocol.SourceLeft) {
	events.Source.Left(evt.ID, evt.Name)
	d.push(protocol.LeftNotice(evt.Name))
}

func (d *Dispatcher) push(text string) {
	dropped := d.notices.Push(text)
	events.Notice.Push(text, dropped)
	d.pending.Notices = append(d.pending.Notices, text)
}
