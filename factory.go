package gopdm

import (
	"slices"
	"sync"
)

type creator struct {
	class *Class
	ctor  func() Handle
}

// Factory maps class keywords to constructors. Registration usually happens
// once at start-up; lookups are safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	creators map[string]creator
	order    []string
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{creators: make(map[string]creator)}
}

var (
	defaultFactoryOnce sync.Once
	defaultFactory     *Factory
)

// DefaultFactory returns the process-wide factory. Library code takes a
// *Factory explicitly; this exists for the outermost application layer.
func DefaultFactory() *Factory {
	defaultFactoryOnce.Do(func() { defaultFactory = NewFactory() })
	return defaultFactory
}

// Register associates class with a zero-argument constructor. It panics when
// the keyword is already registered or the arguments are nil.
func (f *Factory) Register(class *Class, ctor func() Handle) {
	if class == nil || ctor == nil {
		panic("gopdm.Factory.Register: class and constructor must not be nil")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.creators[class.keyword]; dup {
		panic("gopdm.Factory.Register: class " + quote(class.keyword) + " already registered")
	}
	f.creators[class.keyword] = creator{class: class, ctor: ctor}
	f.order = append(f.order, class.keyword)
}

// RegisterCreator registers a typed constructor for class.
func RegisterCreator[T Handle](f *Factory, class *Class, ctor func() T) {
	if ctor == nil {
		panic("gopdm.RegisterCreator: constructor must not be nil")
	}
	f.Register(class, func() Handle { return ctor() })
}

// Create constructs a blank instance of the class named keyword. An
// unregistered keyword is reported with ok == false.
func (f *Factory) Create(keyword string) (Handle, bool) {
	f.mu.RLock()
	c, ok := f.creators[keyword]
	f.mu.RUnlock()
	if !ok {
		return nil, false
	}
	h := c.ctor()
	if isNilHandle(h) {
		return nil, false
	}
	if o := h.AsObject(); o.class == nil || o.class.keyword != keyword {
		panic("gopdm.Factory.Create: constructor for " + quote(keyword) + " built an object of another class")
	}
	return h, true
}

// CreateAs constructs an instance and converts it to T.
func CreateAs[T Handle](f *Factory, keyword string) (T, bool) {
	var zero T
	h, ok := f.Create(keyword)
	if !ok {
		return zero, false
	}
	t, ok := h.(T)
	if !ok {
		h.AsObject().Destroy()
		return zero, false
	}
	return t, true
}

// Class returns the registered class for keyword.
func (f *Factory) Class(keyword string) (*Class, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.creators[keyword]
	return c.class, ok
}

// Keywords lists registered class keywords in registration order.
func (f *Factory) Keywords() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.order)
}

// Classes lists registered classes in registration order.
func (f *Factory) Classes() []*Class {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Class, len(f.order))
	for i, k := range f.order {
		out[i] = f.creators[k].class
	}
	return out
}
