package gopdm

import (
	js "github.com/reoring/gopdm/jsonschema"
)

// ChildFieldHandle is the type-erased view of a field owning objects.
type ChildFieldHandle interface {
	FieldHandle
	// ChildClass is the class every owned object must be or derive from.
	ChildClass() *Class
	// Children returns the owned objects in order.
	Children() []Handle
	IsArray() bool
}

type childOwner interface {
	ChildFieldHandle
	detachChild(o *Object)
	destroyChildren()
	accepts(h Handle) bool
	readChildren(items []Handle)
}

// ChildAccessor stores the occupant of a ChildField.
type ChildAccessor interface {
	Object() Handle
	SetObject(h Handle)
}

// ChildStorage is the in-memory ChildAccessor.
type ChildStorage struct {
	h Handle
}

func (c *ChildStorage) Object() Handle     { return c.h }
func (c *ChildStorage) SetObject(h Handle) { c.h = h }

// childBase holds what single and array child fields share: the accepted
// class and the attach/detach bookkeeping.
type childBase struct {
	fieldBase
	class *Class
}

func (b *childBase) ChildClass() *Class { return b.class }
func (b *childBase) IsReadable() bool   { return true }
func (b *childBase) IsWritable() bool   { return true }

// check panics unless o may be attached to the field. A current parent is
// accepted when moving, since the caller detaches o afterwards.
func (b *childBase) check(op string, o *Object, moving bool) {
	switch {
	case o.class == nil:
		panic("gopdm." + op + ": object is not initialized")
	case o.destroyed:
		panic("gopdm." + op + ": object is destroyed")
	case !moving && o.parent != nil:
		panic("gopdm." + op + ": object " + o.uuid + " already has a parent field")
	case !o.class.Is(b.class.keyword):
		panic("gopdm." + op + ": " + o.class.keyword + " is not a " + b.class.keyword)
	}
	for p := b.owner; p != nil; p = p.Parent() {
		if p == o {
			panic("gopdm." + op + ": object cannot own itself")
		}
	}
}

// attach makes the field the parent of o. Every violation is a programming
// error and panics.
func (b *childBase) attach(op string, o *Object) {
	b.check(op, o, false)
	o.parent = b.self.(childOwner)
}

// move detaches o from its current field once it is known to fit b.
func (b *childBase) move(op string, o *Object) {
	b.check(op, o, true)
	if p := o.parent; p != nil {
		p.detachChild(o)
	}
}

// release severs o from the field: the back-pointer is cleared and the old
// owner stops observing o's signals.
func (b *childBase) release(o *Object) {
	o.parent = nil
	o.disconnectObserverFromAllSignals(b.owner)
}

func (b *childBase) refSchema() *js.Schema {
	return &js.Schema{Ref: ObjectSchemaRef(b.class.keyword)}
}

// ObjectSchemaRef is the $id of a class schema, also used as $ref target.
func ObjectSchemaRef(classKeyword string) string {
	return "/schemas/" + classKeyword
}

// ChildField owns at most one object.
type ChildField[T Handle] struct {
	childBase
	accessor ChildAccessor
}

// NewChildField creates a field owning one object of class (or a subclass).
// A nil class accepts any object.
func NewChildField[T Handle](class *Class) *ChildField[T] {
	if class == nil {
		class = ObjectClass
	}
	f := &ChildField[T]{accessor: &ChildStorage{}}
	f.class = class
	f.self = f
	f.AddCapability(&childIO{field: f}, true)
	return f
}

func (f *ChildField[T]) WithDoc(doc string) *ChildField[T] {
	f.AddCapability(&Documentation{Text: doc}, true)
	return f
}

func (f *ChildField[T]) WithScripting(readable, writable bool) *ChildField[T] {
	f.AddCapability(&Scripting{Readable: readable, Writable: writable}, true)
	return f
}

func (f *ChildField[T]) Deprecated() *ChildField[T] {
	f.AddCapability(&Deprecation{}, true)
	return f
}

// WithAccessor replaces the storage. It panics if the field already owns an
// object.
func (f *ChildField[T]) WithAccessor(a ChildAccessor) *ChildField[T] {
	if a == nil {
		panic("gopdm.ChildField.WithAccessor: accessor must not be nil")
	}
	if f.accessor.Object() != nil {
		panic("gopdm.ChildField.WithAccessor: field is not empty")
	}
	f.accessor = a
	return f
}

func (f *ChildField[T]) IsArray() bool        { return false }
func (f *ChildField[T]) PortableType() string { return f.class.keyword }

func (f *ChildField[T]) accepts(h Handle) bool {
	_, ok := h.(T)
	return ok
}

// Object returns the owned object, or the zero T when empty.
func (f *ChildField[T]) Object() T {
	var zero T
	h := f.accessor.Object()
	if h == nil {
		return zero
	}
	t, _ := h.(T)
	return t
}

// Empty reports whether the field owns nothing.
func (f *ChildField[T]) Empty() bool { return f.accessor.Object() == nil }

func (f *ChildField[T]) Children() []Handle {
	if h := f.accessor.Object(); h != nil {
		return []Handle{h}
	}
	return nil
}

// SetObject makes h the owned object and hands back the previous occupant,
// detached but not destroyed. Passing a nil h only clears the field.
func (f *ChildField[T]) SetObject(h T) T {
	var zero T
	cur := f.accessor.Object()
	if !isNilHandle(h) {
		if cur != nil && cur.AsObject() == h.AsObject() {
			return zero
		}
		f.attach("ChildField.SetObject", h.AsObject())
	}
	if cur != nil {
		f.release(cur.AsObject())
	}
	if isNilHandle(h) {
		f.accessor.SetObject(nil)
	} else {
		f.accessor.SetObject(h)
	}
	if cur == nil {
		return zero
	}
	prev, _ := cur.(T)
	return prev
}

// Clear detaches the owned object and returns it.
func (f *ChildField[T]) Clear() T {
	var zero T
	return f.SetObject(zero)
}

// Adopt moves h from whatever field owns it into f and returns the previous
// occupant, detached but not destroyed. Nothing changes when h cannot be
// placed in f.
func (f *ChildField[T]) Adopt(h T) T {
	var zero T
	if isNilHandle(h) {
		panic("gopdm.ChildField.Adopt: object must not be nil")
	}
	o := h.AsObject()
	if cur := f.accessor.Object(); cur != nil && cur.AsObject() == o {
		return zero
	}
	f.move("ChildField.Adopt", o)
	return f.SetObject(h)
}

func (f *ChildField[T]) detachChild(o *Object) {
	if cur := f.accessor.Object(); cur != nil && cur.AsObject() == o {
		f.accessor.SetObject(nil)
	}
	f.release(o)
}

func (f *ChildField[T]) destroyChildren() {
	cur := f.accessor.Object()
	if cur == nil {
		return
	}
	f.accessor.SetObject(nil)
	o := cur.AsObject()
	f.release(o)
	o.Destroy()
}

// readChildren installs the object produced by a read, destroying the
// previous occupant.
func (f *ChildField[T]) readChildren(items []Handle) {
	var prev T
	if len(items) == 0 {
		prev = f.Clear()
	} else {
		prev = f.SetObject(items[0].(T))
	}
	if !isNilHandle(prev) {
		prev.AsObject().Destroy()
	}
}
