// Package events implements the named subscribe/unsubscribe event
// stream the bridge coordinator exposes to callers (insight:recorded,
// sync:completed, sync:failed, import:completed, index:curated).
//
// Emit dispatches to listeners synchronously, on the emitting
// goroutine, and in subscription order, rather than through a batched,
// asynchronous event bus. The listener registry is mutex-guarded
// because the bridge emits both from its callers' goroutines and from
// its periodic-sync goroutine.
package events

import "sync"

// Event is a single emitted occurrence: a name plus an arbitrary,
// event-specific payload.
type Event struct {
	Name    string
	Payload any
}

// Listener receives emitted events.
type Listener func(Event)

// Emitter is a minimal named pub/sub used for the bridge's event
// stream. The zero value is not usable; construct with NewEmitter.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]Listener
	nextID    int
	ids       map[string]map[int]Listener
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string][]Listener),
		ids:       make(map[string]map[int]Listener),
	}
}

// subscriptionID identifies one Subscribe call for Unsubscribe.
type subscriptionID struct {
	name string
	id   int
}

// Subscribe registers fn to be called for every event emitted under
// name, returning a token that Unsubscribe accepts.
func (e *Emitter) Subscribe(name string, fn Listener) any {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++

	if e.ids[name] == nil {
		e.ids[name] = make(map[int]Listener)
	}
	e.ids[name][id] = fn
	e.rebuildLocked(name)

	return subscriptionID{name: name, id: id}
}

// Unsubscribe removes a listener previously returned by Subscribe. It
// is safe to call more than once with the same token.
func (e *Emitter) Unsubscribe(token any) {
	sub, ok := token.(subscriptionID)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if byID, ok := e.ids[sub.name]; ok {
		delete(byID, sub.id)
		e.rebuildLocked(sub.name)
	}
}

// RemoveAllListeners clears every subscriber for every event name.
// Used by the bridge's destroy() so it is safe to call more than
// once.
func (e *Emitter) RemoveAllListeners() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners = make(map[string][]Listener)
	e.ids = make(map[string]map[int]Listener)
}

// Emit dispatches an event to every listener currently subscribed to
// name, synchronously and in subscription order.
func (e *Emitter) Emit(name string, payload any) {
	e.mu.Lock()
	subs := append([]Listener(nil), e.listeners[name]...)
	e.mu.Unlock()

	ev := Event{Name: name, Payload: payload}
	for _, fn := range subs {
		fn(ev)
	}
}

// rebuildLocked recomputes the ordered listener slice for name from
// the id map. Must be called with e.mu held.
func (e *Emitter) rebuildLocked(name string) {
	byID := e.ids[name]
	if len(byID) == 0 {
		delete(e.listeners, name)
		delete(e.ids, name)
		return
	}

	ordered := make([]Listener, 0, len(byID))
	for id := 0; id < e.nextID; id++ {
		if fn, ok := byID[id]; ok {
			ordered = append(ordered, fn)
		}
	}
	e.listeners[name] = ordered
}
