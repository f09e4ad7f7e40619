package emitter

import "sync"

// Listener handles an emitted event payload.
type Listener func(data any)

// Emitter is a process-local synchronous event bus. Services emit events on
// every mutation; interested components (activity log, search cache version
// tracking, websocket relay) subscribe with On.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{
		listeners: make(map[string][]Listener),
	}
}

// On registers a listener for the named event.
func (e *Emitter) On(event string, listener Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], listener)
}

// Emit calls all listeners registered for the event, synchronously and in
// registration order.
func (e *Emitter) Emit(event string, data any) {
	e.mu.RLock()
	listeners := make([]Listener, len(e.listeners[event]))
	copy(listeners, e.listeners[event])
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
