package gopdm

import (
	"reflect"

	"go.uber.org/zap"
)

// FieldHandle is the type-erased view of a field used by traversal,
// serialization and remote access.
type FieldHandle interface {
	Capable
	Keyword() string
	Owner() *Object
	IsReadable() bool
	IsWritable() bool
	Documentation() string
	// PortableType names the field's value type in the portable vocabulary
	// (double, int32, string[], a class keyword, ...).
	PortableType() string
	base() *fieldBase
}

type fieldBase struct {
	keyword string
	owner   *Object
	self    FieldHandle
	caps    capabilitySet
}

func (b *fieldBase) base() *fieldBase { return b }

func (b *fieldBase) Keyword() string { return b.keyword }

// Owner returns the object the field was added to, or nil before AddField.
func (b *fieldBase) Owner() *Object { return b.owner }

func (b *fieldBase) Capabilities() []Capability { return b.caps.list() }

func (b *fieldBase) AddCapability(c Capability, takeOwnership bool) {
	b.caps.add(b.self, c, takeOwnership)
}

func (b *fieldBase) Documentation() string {
	if d, ok := CapabilityOf[*Documentation](b.self); ok {
		return d.Text
	}
	return ""
}

// path renders the field location for issues, e.g. /name.
func (b *fieldBase) path() string { return "/" + b.keyword }

// Field is a named, typed value slot.
type Field[T any] struct {
	fieldBase
	accessor Accessor[T]
	def      T
	codec    ValueCodec[T]
}

// NewField creates a field whose default and initial value is def. The field
// is serializable unless WithoutIO is called.
func NewField[T any](def T) *Field[T] {
	f := &Field[T]{accessor: &DirectStorage[T]{v: def}, def: def}
	f.self = f
	f.AddCapability(&valueIO[T]{field: f}, true)
	return f
}

// WithDoc attaches documentation.
func (f *Field[T]) WithDoc(doc string) *Field[T] {
	f.AddCapability(&Documentation{Text: doc}, true)
	return f
}

// WithValidator adds validators run by SetValue.
func (f *Field[T]) WithValidator(vs ...Validator[T]) *Field[T] {
	val, ok := CapabilityOf[*Validation[T]](f)
	if !ok {
		val = &Validation[T]{}
		f.AddCapability(val, true)
	}
	val.validators = append(val.validators, vs...)
	return f
}

// WithAccessor replaces the value storage. The current value is not copied.
func (f *Field[T]) WithAccessor(a Accessor[T]) *Field[T] {
	if a == nil {
		panic("gopdm.Field.WithAccessor: accessor must not be nil")
	}
	f.accessor = a
	return f
}

// WithScripting exposes the field to remote callers.
func (f *Field[T]) WithScripting(readable, writable bool) *Field[T] {
	f.AddCapability(&Scripting{Readable: readable, Writable: writable}, true)
	return f
}

// Deprecated marks the field as read-only for serialization: old records
// still populate it, new ones leave it out.
func (f *Field[T]) Deprecated() *Field[T] {
	f.AddCapability(&Deprecation{}, true)
	return f
}

// WithCodec installs a custom JSON codec for the value.
func (f *Field[T]) WithCodec(c ValueCodec[T]) *Field[T] {
	f.codec = c
	return f
}

// WithoutIO removes the field from serialization.
func (f *Field[T]) WithoutIO() *Field[T] {
	kept := f.caps.entries[:0]
	for _, e := range f.caps.entries {
		if _, io := e.c.(FieldIO); io {
			continue
		}
		kept = append(kept, e)
	}
	f.caps.entries = kept
	return f
}

// Accessor returns the installed storage accessor.
func (f *Field[T]) Accessor() Accessor[T] { return f.accessor }

func (f *Field[T]) IsReadable() bool { return f.accessor.Readable() }
func (f *Field[T]) IsWritable() bool { return f.accessor.Writable() }

func (f *Field[T]) PortableType() string { return PortableTypeName(reflect.TypeFor[T]()) }

// Default returns the default value.
func (f *Field[T]) Default() T { return f.def }

// Get returns the current value or the accessor's failure.
func (f *Field[T]) Get() (T, error) { return f.accessor.Value() }

// Value returns the current value. Accessor failures are logged and yield
// the zero value; use Get to observe them.
func (f *Field[T]) Value() T {
	v, err := f.accessor.Value()
	if err != nil {
		Logger().Warn("field value unavailable", zap.String("field", f.keyword), zap.Error(err))
	}
	return v
}

// SetValue validates v and stores it. A validator failing with Error or
// Critical severity returns Issues and leaves the stored value unchanged;
// Warn failures are logged and the value is stored.
func (f *Field[T]) SetValue(v T) error {
	if err := f.validate(v); err != nil {
		return err
	}
	if err := f.accessor.SetValue(v); err != nil {
		return err
	}
	if f.owner != nil {
		f.owner.Changed().Emit(f)
	}
	return nil
}

// ResetToDefault stores the default value.
func (f *Field[T]) ResetToDefault() error { return f.SetValue(f.def) }

func (f *Field[T]) validate(v T) error {
	val, ok := CapabilityOf[*Validation[T]](f)
	if !ok {
		return nil
	}
	iss := val.Check(v)
	if len(iss) == 0 {
		return nil
	}
	var fatal Issues
	for _, it := range iss {
		it.Path = f.path()
		if it.Severity >= Error {
			fatal = append(fatal, it)
			continue
		}
		Logger().Warn("field validation warning",
			zap.String("field", f.keyword), zap.String("rule", it.Rule), zap.String("message", it.Message))
	}
	if len(fatal) > 0 {
		return fatal
	}
	return nil
}
