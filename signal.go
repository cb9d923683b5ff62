package gopdm

import "slices"

type signalEndpoint interface {
	disconnectObserver(o *Object)
	disconnectAll()
}

type connection[T any] struct {
	observer *Object
	fn       func(T)
}

// Signal is a notification channel emitted by an object. Connections are
// keyed by the observing object so they can be dropped when that object
// stops owning the emitter or is destroyed.
type Signal[T any] struct {
	emitter *Object
	conns   []connection[T]
}

// NewSignal creates a signal emitted by emitter.
func NewSignal[T any](emitter Handle) *Signal[T] {
	if isNilHandle(emitter) {
		panic("gopdm.NewSignal: emitter must not be nil")
	}
	s := &Signal[T]{emitter: emitter.AsObject()}
	s.emitter.signals = append(s.emitter.signals, s)
	return s
}

// Emitter returns the emitting object.
func (s *Signal[T]) Emitter() *Object { return s.emitter }

// Connect registers fn on behalf of observer. A nil observer makes an
// anonymous connection that only the emitter's destruction removes.
func (s *Signal[T]) Connect(observer Handle, fn func(T)) {
	if fn == nil {
		panic("gopdm.Signal.Connect: callback must not be nil")
	}
	var ob *Object
	if !isNilHandle(observer) {
		ob = observer.AsObject()
		ob.observing = append(ob.observing, s)
	}
	s.conns = append(s.conns, connection[T]{observer: ob, fn: fn})
}

// Disconnect drops every connection held by observer.
func (s *Signal[T]) Disconnect(observer Handle) {
	if isNilHandle(observer) {
		return
	}
	ob := observer.AsObject()
	s.disconnectObserver(ob)
	ob.observing = slices.DeleteFunc(ob.observing, func(e signalEndpoint) bool { return e == s })
}

// Emit calls every connected callback in connection order.
func (s *Signal[T]) Emit(v T) {
	for _, c := range slices.Clone(s.conns) {
		c.fn(v)
	}
}

// Connections returns the number of live connections.
func (s *Signal[T]) Connections() int { return len(s.conns) }

func (s *Signal[T]) disconnectObserver(o *Object) {
	s.conns = slices.DeleteFunc(s.conns, func(c connection[T]) bool { return c.observer == o })
}

func (s *Signal[T]) disconnectAll() { s.conns = nil }
