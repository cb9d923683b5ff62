package classdef

import (
	"github.com/reoring/gopdm"
)

// Dynamic is an object whose class and fields come from a ClassDef.
type Dynamic struct {
	gopdm.Object
	def *compiled
}

// Definition returns the definition the object's class was built from.
func (d *Dynamic) Definition() ClassDef { return d.def.def }

// Value returns the value of the field keyword when it holds a T.
func Value[T any](d *Dynamic, keyword string) (T, bool) {
	var zero T
	fh, ok := d.FindField(keyword)
	if !ok {
		return zero, false
	}
	f, ok := fh.(*gopdm.Field[T])
	if !ok {
		return zero, false
	}
	v, err := f.Get()
	if err != nil {
		return zero, false
	}
	return v, true
}

// SetValue stores v in the field keyword, running its validators.
func SetValue[T any](d *Dynamic, keyword string, v T) error {
	fh, ok := d.FindField(keyword)
	if !ok {
		return gopdm.Issues{{Path: "/" + keyword, Code: gopdm.CodeNotFound, Message: "no field " + keyword, Severity: gopdm.Error, Cause: gopdm.ErrNotFound}}
	}
	f, ok := fh.(*gopdm.Field[T])
	if !ok {
		return gopdm.Issues{{Path: "/" + keyword, Code: gopdm.CodeInvalidType, Message: "field " + keyword + " holds " + fh.PortableType(), Severity: gopdm.Error}}
	}
	return f.SetValue(v)
}

// Child returns the single-child field keyword.
func (d *Dynamic) Child(keyword string) (*gopdm.ChildField[gopdm.Handle], bool) {
	fh, ok := d.FindField(keyword)
	if !ok {
		return nil, false
	}
	cf, ok := fh.(*gopdm.ChildField[gopdm.Handle])
	return cf, ok
}

// ChildArray returns the child array field keyword.
func (d *Dynamic) ChildArray(keyword string) (*gopdm.ChildArrayField[gopdm.Handle], bool) {
	fh, ok := d.FindField(keyword)
	if !ok {
		return nil, false
	}
	af, ok := fh.(*gopdm.ChildArrayField[gopdm.Handle])
	return af, ok
}
