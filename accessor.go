package gopdm

// Accessor stores or fetches the value of a Field. Fields use DirectStorage
// unless another accessor is installed with WithAccessor.
type Accessor[T any] interface {
	Value() (T, error)
	SetValue(v T) error
	Readable() bool
	Writable() bool
}

// DirectStorage keeps the value in memory.
type DirectStorage[T any] struct {
	v T
}

func (d *DirectStorage[T]) Value() (T, error)  { return d.v, nil }
func (d *DirectStorage[T]) SetValue(v T) error { d.v = v; return nil }
func (d *DirectStorage[T]) Readable() bool     { return true }
func (d *DirectStorage[T]) Writable() bool     { return true }

// ProxyAccessor forwards reads and writes to callbacks, typically methods of
// the owning object or a remote client. A nil Get makes the field
// unreadable; a nil Set makes it read-only.
type ProxyAccessor[T any] struct {
	Get func() (T, error)
	Set func(T) error
}

func (p *ProxyAccessor[T]) Value() (T, error) {
	if p.Get == nil {
		var zero T
		return zero, Issues{{Path: "/", Code: CodeUnsupported, Message: "field has no getter", Severity: Error}}
	}
	return p.Get()
}

func (p *ProxyAccessor[T]) SetValue(v T) error {
	if p.Set == nil {
		return Issues{{Path: "/", Code: CodeUnsupported, Message: "field has no setter", Severity: Error}}
	}
	return p.Set(v)
}

func (p *ProxyAccessor[T]) Readable() bool { return p.Get != nil }
func (p *ProxyAccessor[T]) Writable() bool { return p.Set != nil }
