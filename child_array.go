package gopdm

import (
	"slices"
	"strconv"
)

// ChildArrayAccessor stores the ordered occupants of a ChildArrayField.
type ChildArrayAccessor interface {
	Size() int
	At(i int) Handle
	Insert(i int, h Handle)
	Remove(i int) Handle
	Clear() []Handle
}

// ChildArrayStorage is the in-memory ChildArrayAccessor.
type ChildArrayStorage struct {
	items []Handle
}

func (c *ChildArrayStorage) Size() int              { return len(c.items) }
func (c *ChildArrayStorage) At(i int) Handle        { return c.items[i] }
func (c *ChildArrayStorage) Insert(i int, h Handle) { c.items = slices.Insert(c.items, i, h) }

func (c *ChildArrayStorage) Remove(i int) Handle {
	h := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return h
}

func (c *ChildArrayStorage) Clear() []Handle {
	out := c.items
	c.items = nil
	return out
}

// ChildArrayField owns an ordered, mutable sequence of objects.
type ChildArrayField[T Handle] struct {
	childBase
	accessor ChildArrayAccessor
}

// NewChildArrayField creates a field owning objects of class (or a
// subclass). A nil class accepts any object.
func NewChildArrayField[T Handle](class *Class) *ChildArrayField[T] {
	if class == nil {
		class = ObjectClass
	}
	f := &ChildArrayField[T]{accessor: &ChildArrayStorage{}}
	f.class = class
	f.self = f
	f.AddCapability(&childIO{field: f}, true)
	return f
}

func (f *ChildArrayField[T]) WithDoc(doc string) *ChildArrayField[T] {
	f.AddCapability(&Documentation{Text: doc}, true)
	return f
}

func (f *ChildArrayField[T]) WithScripting(readable, writable bool) *ChildArrayField[T] {
	f.AddCapability(&Scripting{Readable: readable, Writable: writable}, true)
	return f
}

func (f *ChildArrayField[T]) Deprecated() *ChildArrayField[T] {
	f.AddCapability(&Deprecation{}, true)
	return f
}

// WithAccessor replaces the storage. It panics if the field is not empty.
func (f *ChildArrayField[T]) WithAccessor(a ChildArrayAccessor) *ChildArrayField[T] {
	if a == nil {
		panic("gopdm.ChildArrayField.WithAccessor: accessor must not be nil")
	}
	if f.accessor.Size() > 0 {
		panic("gopdm.ChildArrayField.WithAccessor: field is not empty")
	}
	f.accessor = a
	return f
}

func (f *ChildArrayField[T]) IsArray() bool        { return true }
func (f *ChildArrayField[T]) PortableType() string { return f.class.keyword + "[]" }

func (f *ChildArrayField[T]) accepts(h Handle) bool {
	_, ok := h.(T)
	return ok
}

func (f *ChildArrayField[T]) Size() int   { return f.accessor.Size() }
func (f *ChildArrayField[T]) Empty() bool { return f.accessor.Size() == 0 }

func (f *ChildArrayField[T]) checkIndex(op string, i, limit int) {
	if i < 0 || i >= limit {
		panic("gopdm.ChildArrayField." + op + ": index " + strconv.Itoa(i) + " out of range [0," + strconv.Itoa(limit) + ")")
	}
}

// At returns the object at index i. It panics when i is out of range.
func (f *ChildArrayField[T]) At(i int) T {
	f.checkIndex("At", i, f.accessor.Size())
	t, _ := f.accessor.At(i).(T)
	return t
}

// Objects returns the owned objects in order.
func (f *ChildArrayField[T]) Objects() []T {
	n := f.accessor.Size()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		if t, ok := f.accessor.At(i).(T); ok {
			out = append(out, t)
		}
	}
	return out
}

func (f *ChildArrayField[T]) Children() []Handle {
	n := f.accessor.Size()
	out := make([]Handle, n)
	for i := 0; i < n; i++ {
		out[i] = f.accessor.At(i)
	}
	return out
}

// Index returns the position of h, or -1.
func (f *ChildArrayField[T]) Index(h T) int {
	if isNilHandle(h) {
		return -1
	}
	o := h.AsObject()
	for i, n := 0, f.accessor.Size(); i < n; i++ {
		if f.accessor.At(i).AsObject() == o {
			return i
		}
	}
	return -1
}

// PushBack appends h. It panics for nil or already-parented objects.
func (f *ChildArrayField[T]) PushBack(h T) {
	f.InsertAt(f.accessor.Size(), h)
}

// InsertAt inserts h before index i; i == Size appends.
func (f *ChildArrayField[T]) InsertAt(i int, h T) {
	if isNilHandle(h) {
		panic("gopdm.ChildArrayField.InsertAt: object must not be nil")
	}
	f.checkIndex("InsertAt", i, f.accessor.Size()+1)
	f.attach("ChildArrayField.InsertAt", h.AsObject())
	f.accessor.Insert(i, h)
}

// Erase removes and destroys the object at index i.
func (f *ChildArrayField[T]) Erase(i int) {
	f.checkIndex("Erase", i, f.accessor.Size())
	h := f.accessor.Remove(i)
	o := h.AsObject()
	f.release(o)
	o.Destroy()
}

// RemoveChildObject detaches h without destroying it. Absent or nil objects
// are ignored. It reports whether h was removed.
func (f *ChildArrayField[T]) RemoveChildObject(h T) bool {
	i := f.Index(h)
	if i < 0 {
		return false
	}
	f.accessor.Remove(i)
	f.release(h.AsObject())
	return true
}

// Clear detaches every object and hands them back to the caller; none is
// destroyed. It panics, leaving the field untouched, if the accessor holds an
// object that is not a T.
func (f *ChildArrayField[T]) Clear() []T {
	n := f.accessor.Size()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		h := f.accessor.At(i)
		t, ok := h.(T)
		if !ok {
			panic("gopdm.ChildArrayField.Clear: element " + strconv.Itoa(i) + " (" + h.AsObject().ClassKeyword() + ") has the wrong Go type")
		}
		out = append(out, t)
	}
	for _, h := range f.accessor.Clear() {
		f.release(h.AsObject())
	}
	return out
}

// Adopt moves h from whatever field owns it to the end of f.
func (f *ChildArrayField[T]) Adopt(h T) {
	if isNilHandle(h) {
		panic("gopdm.ChildArrayField.Adopt: object must not be nil")
	}
	f.move("ChildArrayField.Adopt", h.AsObject())
	f.PushBack(h)
}

func (f *ChildArrayField[T]) detachChild(o *Object) {
	for i, n := 0, f.accessor.Size(); i < n; i++ {
		if f.accessor.At(i).AsObject() == o {
			f.accessor.Remove(i)
			break
		}
	}
	f.release(o)
}

func (f *ChildArrayField[T]) destroyChildren() {
	for _, h := range f.accessor.Clear() {
		o := h.AsObject()
		f.release(o)
		o.Destroy()
	}
}

// readChildren swaps the contents for objects produced by a read. The old
// objects are destroyed.
func (f *ChildArrayField[T]) readChildren(items []Handle) {
	f.destroyChildren()
	for _, h := range items {
		f.PushBack(h.(T))
	}
}
