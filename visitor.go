package gopdm

// Visitor receives callbacks during a graph walk.
type Visitor interface {
	VisitObject(o *Object)
	VisitField(f FieldHandle)
	VisitChildField(f ChildFieldHandle)
}

// VisitorFuncs adapts plain functions to Visitor; nil entries are skipped.
type VisitorFuncs struct {
	Object     func(o *Object)
	Field      func(f FieldHandle)
	ChildField func(f ChildFieldHandle)
}

func (v VisitorFuncs) VisitObject(o *Object) {
	if v.Object != nil {
		v.Object(o)
	}
}

func (v VisitorFuncs) VisitField(f FieldHandle) {
	if v.Field != nil {
		v.Field(f)
	}
}

func (v VisitorFuncs) VisitChildField(f ChildFieldHandle) {
	if v.ChildField != nil {
		v.ChildField(f)
	}
}

// Inspect walks root pre-order for read-only visitors: the object first, then
// each readable field in declaration order, fully descending into the
// objects of a child field before moving to the next field.
func Inspect(root Handle, v Visitor) {
	if isNilHandle(root) {
		return
	}
	walk(root.AsObject(), v, FieldHandle.IsReadable)
}

// Edit walks root like Inspect but only through writable fields.
func Edit(root Handle, v Visitor) {
	if isNilHandle(root) {
		return
	}
	walk(root.AsObject(), v, FieldHandle.IsWritable)
}

func walk(o *Object, v Visitor, allowed func(FieldHandle) bool) {
	v.VisitObject(o)
	for _, f := range o.fields {
		if !allowed(f) {
			continue
		}
		cf, ok := f.(ChildFieldHandle)
		if !ok {
			v.VisitField(f)
			continue
		}
		v.VisitChildField(cf)
		for _, c := range cf.Children() {
			walk(c.AsObject(), v, allowed)
		}
	}
}
