package events

import (
	"fmt"
	"slices"
	"sync"
)

// Proxy is a restricted view over a Source: it only exposes the kinds it was
// built with and only removes the listeners registered through it.
type Proxy[K comparable, E any] struct {
	source Source[K, E]
	kinds  []K

	mu  sync.Mutex
	ids map[K][]ListenerID
}

// NewProxy restricts source to kinds.
func NewProxy[K comparable, E any](source Source[K, E], kinds ...K) *Proxy[K, E] {
	return &Proxy[K, E]{
		source: source,
		kinds:  slices.Clone(kinds),
		ids:    make(map[K][]ListenerID),
	}
}

// Kinds returns the kinds exposed by the proxy.
func (p *Proxy[K, E]) Kinds() []K {
	return slices.Clone(p.kinds)
}

// On subscribes fn to kind on the underlying source.
func (p *Proxy[K, E]) On(kind K, fn Listener[E]) (ListenerID, error) {
	if !slices.Contains(p.kinds, kind) {
		return 0, fmt.Errorf("%w: %v", ErrNotProxied, kind)
	}
	id := p.source.On(kind, fn)

	p.mu.Lock()
	p.ids[kind] = append(p.ids[kind], id)
	p.mu.Unlock()
	return id, nil
}

// MustOn is On for kinds known to be exposed; it panics otherwise.
func (p *Proxy[K, E]) MustOn(kind K, fn Listener[E]) ListenerID {
	id, err := p.On(kind, fn)
	if err != nil {
		panic(err)
	}
	return id
}

// Off removes the listeners this proxy registered for the given kinds, or for all
// of its kinds when none is given. Listeners registered elsewhere are untouched.
func (p *Proxy[K, E]) Off(kinds ...K) {
	if len(kinds) == 0 {
		kinds = p.kinds
	}

	p.mu.Lock()
	removed := make(map[K][]ListenerID, len(kinds))
	for _, kind := range kinds {
		if ids := p.ids[kind]; len(ids) > 0 {
			removed[kind] = ids
			delete(p.ids, kind)
		}
	}
	p.mu.Unlock()

	for kind, ids := range removed {
		p.source.Off(kind, ids...)
	}
}
