// Package drag moves and resizes window elements inside their parent
// container in response to pointer input.
//
// Press events are delivered to a Handler by whoever owns hit testing.
// Pointer movement and release are observed through a Scope, the global
// listener registry of the host, only while a gesture is in progress.
package drag

import "slices"

// Kind is the type of a scope-wide event.
type Kind int

const (
	// PointerMove fires whenever the pointer moves anywhere in the host.
	PointerMove Kind = iota
	// PointerUp fires when a pointer button is released anywhere.
	PointerUp
	// Resize fires when the parent container changes size.
	Resize
)

func (k Kind) String() string {
	switch k {
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case Resize:
		return "resize"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
	ButtonNone
)

// Event is a pointer or resize event in host coordinates.
type Event struct {
	X, Y   int
	Button Button
}

// Scope registers listeners for host-wide events.
type Scope interface {
	Listen(kind Kind, fn func(Event)) (cancel func())
}

// Dispatcher is an in-process Scope. The host feeds it events; handlers
// subscribe and unsubscribe as gestures start and end.
type Dispatcher struct {
	listeners map[Kind]map[int]func(Event)
	next      int
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[Kind]map[int]func(Event))}
}

// Listen implements Scope. Cancelling more than once is harmless.
func (d *Dispatcher) Listen(kind Kind, fn func(Event)) func() {
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[int]func(Event))
	}
	id := d.next
	d.next++
	d.listeners[kind][id] = fn
	return func() {
		delete(d.listeners[kind], id)
	}
}

// Dispatch delivers ev to every listener of kind in registration order.
// Listeners removed during delivery are not called.
func (d *Dispatcher) Dispatch(kind Kind, ev Event) {
	registered := d.listeners[kind]
	if len(registered) == 0 {
		return
	}
	ids := make([]int, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := d.listeners[kind][id]; ok {
			fn(ev)
		}
	}
}

// Listeners returns how many listeners are registered for kind.
func (d *Dispatcher) Listeners(kind Kind) int {
	return len(d.listeners[kind])
}

// Total returns the number of listeners across all kinds.
func (d *Dispatcher) Total() int {
	n := 0
	for _, l := range d.listeners {
		n += len(l)
	}
	return n
}
