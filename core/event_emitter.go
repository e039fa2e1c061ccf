package orchestration

import "github.com/satyavak/courtroom-core/core/events"

type EventHandler func(events.Event)

// queueEvent records an event to be emitted once the session lock is
// released. The caller must hold o.mu.
func (o *Orchestrator) queueEvent(event events.Event) {
	o.pending = append(o.pending, event)
}

// flushEvents emits queued events in the order they were queued. A flush
// started from inside a handler returns immediately; the outer flush picks
// up whatever the handler queued.
func (o *Orchestrator) flushEvents() {
	for {
		if !o.emitMu.TryLock() {
			return
		}
		for {
			o.mu.Lock()
			if len(o.pending) == 0 {
				o.mu.Unlock()
				break
			}
			event := o.pending[0]
			o.pending = o.pending[1:]
			o.mu.Unlock()

			o.emit(event)
		}
		o.emitMu.Unlock()

		o.mu.Lock()
		drained := len(o.pending) == 0
		o.mu.Unlock()
		if drained {
			return
		}
	}
}

func (o *Orchestrator) emit(event events.Event) {
	o.cueDispatcher.handle(o.baseContext, event)
	for _, handler := range o.handlers {
		handler(event)
	}
}
