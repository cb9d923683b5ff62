package gopdm

type expirer interface {
	expire()
}

// Observer is a non-owning reference that expires when its target is
// destroyed. It never keeps the target alive in the graph.
type Observer[T Handle] struct {
	target  T
	obj     *Object
	expired bool
}

// Observe starts observing h. Observing nil or a destroyed object yields an
// expired observer.
func Observe[T Handle](h T) *Observer[T] {
	ob := &Observer[T]{}
	if isNilHandle(h) || h.AsObject().destroyed {
		ob.expired = true
		return ob
	}
	ob.target = h
	ob.obj = h.AsObject()
	ob.obj.observers = append(ob.obj.observers, ob)
	return ob
}

// Get returns the target while it is alive.
func (ob *Observer[T]) Get() (T, bool) {
	if ob.expired {
		var zero T
		return zero, false
	}
	return ob.target, true
}

// Expired reports whether the target was destroyed or the observer released.
func (ob *Observer[T]) Expired() bool { return ob.expired }

// Release stops observing without touching the target.
func (ob *Observer[T]) Release() {
	if ob.expired {
		return
	}
	ob.obj.removeObserver(ob)
	ob.expire()
}

func (ob *Observer[T]) expire() {
	var zero T
	ob.target = zero
	ob.obj = nil
	ob.expired = true
}
