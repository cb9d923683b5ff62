package gopdm

import "slices"

// Class is the identity record of an object class: its keyword, its parent
// and the inheritance stack derived from both. A Class is constant after
// DefineClass returns.
type Class struct {
	keyword string
	parent  *Class
	doc     string
	stack   []string
}

// ClassOption customizes a class definition.
type ClassOption func(*Class)

// ClassDoc attaches documentation text to the class.
func ClassDoc(doc string) ClassOption { return func(c *Class) { c.doc = doc } }

// ObjectClass is the root of every inheritance stack.
var ObjectClass = DefineClass("Object", nil)

// DefineClass declares a class. It panics when the keyword is invalid or
// already appears in the parent's inheritance stack.
func DefineClass(keyword string, parent *Class, opts ...ClassOption) *Class {
	if !IsValidKeyword(keyword) || isReservedKeyword(keyword) {
		panic("gopdm.DefineClass: invalid class keyword " + quote(keyword))
	}
	c := &Class{keyword: keyword, parent: parent}
	c.stack = []string{keyword}
	if parent != nil {
		if slices.Contains(parent.stack, keyword) {
			panic("gopdm.DefineClass: keyword " + quote(keyword) + " already used by an ancestor")
		}
		c.stack = append(c.stack, parent.stack...)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Class) Keyword() string       { return c.keyword }
func (c *Class) Parent() *Class        { return c.parent }
func (c *Class) Documentation() string { return c.doc }

// InheritanceStack returns the class keyword followed by every ancestor
// keyword, most-derived first.
func (c *Class) InheritanceStack() []string { return slices.Clone(c.stack) }

// Is reports whether the class is, or derives from, the class named keyword.
func (c *Class) Is(keyword string) bool { return MatchesClassKeyword(keyword, c.stack) }

// MatchesClassKeyword reports whether candidate appears in an inheritance stack.
func MatchesClassKeyword(candidate string, stack []string) bool {
	return slices.Contains(stack, candidate)
}

func quote(s string) string { return "\"" + s + "\"" }
