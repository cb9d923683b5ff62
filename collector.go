package gopdm

// Collect returns root and its descendants accepted by match, in pre-order.
// A nil match accepts everything.
func Collect(root Handle, match func(*Object) bool) []*Object {
	var out []*Object
	Inspect(root, VisitorFuncs{Object: func(o *Object) {
		if match == nil || match(o) {
			out = append(out, o)
		}
	}})
	return out
}

// Descendants returns the objects below root (root excluded) whose embedding
// value is a T, in pre-order.
func Descendants[T Handle](root Handle) []T {
	var out []T
	if isNilHandle(root) {
		return nil
	}
	top := root.AsObject()
	Inspect(root, VisitorFuncs{Object: func(o *Object) {
		if o == top {
			return
		}
		if t, ok := o.self.(T); ok {
			out = append(out, t)
		}
	}})
	return out
}

// FindByUUID searches root and its descendants for the object with id.
func FindByUUID(root Handle, id string) (Handle, bool) {
	if isNilHandle(root) || id == "" {
		return nil, false
	}
	var found Handle
	Inspect(root, VisitorFuncs{Object: func(o *Object) {
		if found == nil && o.uuid == id {
			found = o.self
		}
	}})
	return found, found != nil
}

// FindByClass returns root and descendants whose class is or derives from keyword.
func FindByClass(root Handle, keyword string) []*Object {
	return Collect(root, func(o *Object) bool { return o.Is(keyword) })
}
