package directives

import (
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// listeners is the restricted subscription facade shared by every directive.
type listeners struct {
	proxy *events.Proxy[domain.EventKind, domain.Event]
}

func newListeners(bus ports.Bus, kinds ...domain.EventKind) listeners {
	return listeners{proxy: events.NewProxy(bus, kinds...)}
}

// Off removes the listeners registered through the directive for the given kinds,
// or for all of its kinds when none is given.
func (l listeners) Off(kinds ...domain.EventKind) {
	l.proxy.Off(kinds...)
}

// Kinds lists the event kinds the directive exposes.
func (l listeners) Kinds() []domain.EventKind {
	return l.proxy.Kinds()
}

func on[P domain.Event](l listeners, kind domain.EventKind, fn func(P)) events.ListenerID {
	return l.proxy.MustOn(kind, func(e domain.Event) {
		if payload, ok := e.(P); ok {
			fn(payload)
		}
	})
}
