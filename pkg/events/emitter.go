// Package events provides the publish/subscribe primitive the table engine
// coordinates through, plus restricted facades over it.
package events

import (
	"errors"
	"slices"
	"sync"
)

// ErrNotProxied is returned when subscribing through a proxy to a kind it does not expose.
var ErrNotProxied = errors.New("event kind not exposed by this proxy")

// ListenerID identifies a subscription so that it can be removed later.
type ListenerID uint64

// Listener receives dispatched events.
type Listener[E any] func(E)

// Source is the subscription side of an emitter.
type Source[K comparable, E any] interface {
	On(kind K, fn Listener[E]) ListenerID
	Off(kind K, ids ...ListenerID)
}

type subscription[E any] struct {
	id ListenerID
	fn Listener[E]
}

// Emitter dispatches events synchronously to listeners, per kind, in subscription order.
// It is safe for concurrent use; listeners run outside the internal lock and may
// subscribe, unsubscribe or dispatch themselves.
type Emitter[K comparable, E any] struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners map[K][]subscription[E]
}

// NewEmitter creates an emitter with no listeners.
func NewEmitter[K comparable, E any]() *Emitter[K, E] {
	return &Emitter[K, E]{listeners: make(map[K][]subscription[E])}
}

// On appends a listener for kind and returns its id.
func (e *Emitter[K, E]) On(kind K, fn Listener[E]) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.listeners[kind] = append(e.listeners[kind], subscription[E]{id: e.nextID, fn: fn})
	return e.nextID
}

// Dispatch invokes the listeners registered for kind at call time, in order.
// A panicking listener propagates to the caller and stops the remaining ones.
func (e *Emitter[K, E]) Dispatch(kind K, event E) {
	e.mu.Lock()
	subs := slices.Clone(e.listeners[kind])
	e.mu.Unlock()

	for _, sub := range subs {
		sub.fn(event)
	}
}

// Off removes the given listeners of kind, or every listener of kind when no id is given.
func (e *Emitter[K, E]) Off(kind K, ids ...ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(ids) == 0 {
		delete(e.listeners, kind)
		return
	}
	kept := slices.DeleteFunc(slices.Clone(e.listeners[kind]), func(s subscription[E]) bool {
		return slices.Contains(ids, s.id)
	})
	if len(kept) == 0 {
		delete(e.listeners, kind)
		return
	}
	e.listeners[kind] = kept
}

// Clear removes every listener of every kind.
func (e *Emitter[K, E]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.listeners)
}

// Count reports the number of listeners registered for kind.
func (e *Emitter[K, E]) Count(kind K) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.listeners[kind])
}
