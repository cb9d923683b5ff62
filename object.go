package gopdm

import (
	"reflect"
	"slices"

	"github.com/google/uuid"
)

// Handle is implemented by every object in a graph. Types embed Object and
// get AsObject for free.
type Handle interface {
	AsObject() *Object
}

// Object is the graph node embedded by user types. It owns an ordered list
// of keyword-named fields, the methods declared on it and its capabilities.
//
// An Object must be initialized with Init before fields are added:
//
//	it := &Item{}
//	it.Init(it, ItemClass)
type Object struct {
	self    Handle
	class   *Class
	uuid    string
	fields  []FieldHandle
	index   map[string]int
	methods []*Method
	caps    capabilitySet

	parent    childOwner
	observers []expirer
	signals   []signalEndpoint
	observing []signalEndpoint
	changed   *Signal[FieldHandle]
	destroyed bool
}

func (o *Object) AsObject() *Object { return o }

// Init binds the object to the value embedding it and to its class, and
// assigns a fresh UUID.
func (o *Object) Init(self Handle, class *Class) {
	if isNilHandle(self) || self.AsObject() != o {
		panic("gopdm.Object.Init: self must embed this Object")
	}
	if class == nil {
		panic("gopdm.Object.Init: class must not be nil")
	}
	if o.class != nil {
		panic("gopdm.Object.Init: object already initialized as " + o.class.keyword)
	}
	o.self = self
	o.class = class
	o.uuid = uuid.NewString()
	o.index = make(map[string]int)
}

func (o *Object) mustInit(op string) {
	if o.class == nil {
		panic("gopdm." + op + ": object is not initialized")
	}
}

// Self returns the value embedding this Object.
func (o *Object) Self() Handle {
	o.mustInit("Object.Self")
	return o.self
}

func (o *Object) Class() *Class             { return o.class }
func (o *Object) ClassKeyword() string      { return o.class.keyword }
func (o *Object) InheritanceStack() []string { return o.class.InheritanceStack() }

// Is reports whether the object's class is, or derives from, keyword.
func (o *Object) Is(keyword string) bool { return o.class.Is(keyword) }

func (o *Object) UUID() string { return o.uuid }

// SetUUID overrides the identity; used when reading records carrying a UUID.
func (o *Object) SetUUID(id string) { o.uuid = id }

// Fields returns the fields in declaration order.
func (o *Object) Fields() []FieldHandle { return slices.Clone(o.fields) }

// FindField looks a field up by keyword.
func (o *Object) FindField(keyword string) (FieldHandle, bool) {
	i, ok := o.index[keyword]
	if !ok {
		return nil, false
	}
	return o.fields[i], true
}

// Methods returns the methods in declaration order.
func (o *Object) Methods() []*Method { return slices.Clone(o.methods) }

// FindMethod looks a method up by keyword.
func (o *Object) FindMethod(keyword string) (*Method, bool) {
	for _, m := range o.methods {
		if m.keyword == keyword {
			return m, true
		}
	}
	return nil, false
}

// ParentField returns the child field owning this object, or nil for roots.
func (o *Object) ParentField() ChildFieldHandle {
	if o.parent == nil {
		return nil
	}
	return o.parent
}

// Parent returns the object owning the parent field, or nil for roots.
func (o *Object) Parent() *Object {
	if o.parent == nil {
		return nil
	}
	return o.parent.Owner()
}

func (o *Object) Capabilities() []Capability { return o.caps.list() }

func (o *Object) AddCapability(c Capability, takeOwnership bool) {
	o.caps.add(o, c, takeOwnership)
}

// Documentation returns the class documentation, overridden by an attached
// Documentation capability.
func (o *Object) Documentation() string {
	if d, ok := CapabilityOf[*Documentation](o); ok {
		return d.Text
	}
	if o.class == nil {
		return ""
	}
	return o.class.doc
}

// Changed is emitted after a field of this object accepted a new value.
func (o *Object) Changed() *Signal[FieldHandle] {
	if o.changed == nil {
		o.changed = NewSignal[FieldHandle](o)
	}
	return o.changed
}

// Destroyed reports whether Destroy has run.
func (o *Object) Destroyed() bool { return o.destroyed }

// Destroy tears the object down: it detaches from its parent field, expires
// every observer, releases owned capabilities and destroys owned children,
// in that order. Destroying twice is a no-op.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true

	if o.parent != nil {
		o.parent.detachChild(o)
	}

	obs := o.observers
	o.observers = nil
	for _, ob := range obs {
		ob.expire()
	}

	o.caps.release()

	for _, f := range o.fields {
		if c, ok := f.(childOwner); ok {
			c.destroyChildren()
		}
		f.base().caps.release()
	}

	for _, s := range o.signals {
		s.disconnectAll()
	}
	for _, s := range o.observing {
		s.disconnectObserver(o)
	}
	o.observing = nil
}

// disconnectObserverFromAllSignals drops every connection observer holds on
// this object's signals.
func (o *Object) disconnectObserverFromAllSignals(observer *Object) {
	if observer == nil {
		return
	}
	for _, s := range o.signals {
		s.disconnectObserver(observer)
	}
}

func (o *Object) removeObserver(e expirer) {
	for i, ob := range o.observers {
		if ob == e {
			o.observers = slices.Delete(o.observers, i, i+1)
			return
		}
	}
}

// AddField declares a field on owner and returns it. It panics when the
// keyword is invalid, reserved or already used on the object, or when the
// field already belongs to an object.
func AddField[F FieldHandle](owner Handle, keyword string, f F) F {
	if isNilHandle(owner) {
		panic("gopdm.AddField: owner must not be nil")
	}
	o := owner.AsObject()
	o.mustInit("AddField")
	if isNilValue(f) {
		panic("gopdm.AddField: field must not be nil")
	}
	if !IsValidKeyword(keyword) || isReservedKeyword(keyword) {
		panic("gopdm.AddField: invalid field keyword " + quote(keyword))
	}
	if _, dup := o.index[keyword]; dup {
		panic("gopdm.AddField: duplicate field keyword " + quote(keyword) + " on " + o.class.keyword)
	}
	b := f.base()
	if b.owner != nil {
		panic("gopdm.AddField: field " + quote(b.keyword) + " already belongs to " + b.owner.class.keyword)
	}
	b.keyword = keyword
	b.owner = o
	o.index[keyword] = len(o.fields)
	o.fields = append(o.fields, f)
	return f
}

func isNilHandle(h Handle) bool { return h == nil || isNilValue(h) }

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
