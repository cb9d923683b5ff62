package classdef

import (
	"regexp"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/gopdm"
	"github.com/reoring/gopdm/codec"
	"github.com/reoring/gopdm/rules"
)

type compiled struct {
	def      ClassDef
	class    *gopdm.Class
	parent   *compiled
	children map[string]*gopdm.Class // child class per field keyword
}

// Register defines every class of set and registers it with f. Classes may
// derive from each other in any order. A parent outside the set must be
// empty or "Object", since fields of compiled Go classes cannot be
// inherited at runtime. Child fields may name classes of the set or classes
// already registered with f. Nothing is registered when an error is
// returned.
func Register(f *gopdm.Factory, set *Set) ([]*gopdm.Class, error) {
	if f == nil || set == nil {
		return nil, fail(gopdm.RootPath(), gopdm.CodeInvalidType, "factory and set must not be nil")
	}
	defs := make(map[string]ClassDef, len(set.Classes))
	for _, cd := range set.Classes {
		p := classPath(cd.Keyword)
		if err := checkKeyword("class", cd.Keyword); err != nil {
			return nil, relocate(p, err)
		}
		if _, dup := defs[cd.Keyword]; dup {
			return nil, fail(p, gopdm.CodeDuplicateKey, "class %q defined twice", cd.Keyword)
		}
		if _, taken := f.Class(cd.Keyword); taken {
			return nil, fail(p, gopdm.CodeDuplicateKey, "class %q is already registered", cd.Keyword)
		}
		defs[cd.Keyword] = cd
	}

	done := map[string]*compiled{}
	visiting := map[string]bool{}
	var define func(kw string) (*compiled, error)
	define = func(kw string) (*compiled, error) {
		if c, ok := done[kw]; ok {
			return c, nil
		}
		if visiting[kw] {
			return nil, fail(classPath(kw).Field("parent"), gopdm.CodeUnsupported, "inheritance cycle through %q", kw)
		}
		visiting[kw] = true
		cd := defs[kw]
		c := &compiled{def: cd, children: map[string]*gopdm.Class{}}
		parentClass := gopdm.ObjectClass
		switch p := cd.Parent; {
		case p == "" || p == gopdm.ObjectClass.Keyword():
		case hasDef(defs, p):
			pc, err := define(p)
			if err != nil {
				return nil, err
			}
			c.parent = pc
			parentClass = pc.class
		default:
			return nil, fail(classPath(kw).Field("parent"), gopdm.CodeUnknownClass, "parent %q must be defined in the same set", p)
		}
		c.class = gopdm.DefineClass(kw, parentClass, gopdm.ClassDoc(cd.Doc))
		done[kw] = c
		return c, nil
	}

	order := make([]*compiled, 0, len(set.Classes))
	for _, cd := range set.Classes {
		c, err := define(cd.Keyword)
		if err != nil {
			return nil, err
		}
		order = append(order, c)
	}

	for _, c := range order {
		for _, fd := range c.def.Fields {
			kw := fd.Child
			if kw == "" {
				kw = fd.Children
			}
			if kw == "" {
				continue
			}
			if dc, ok := done[kw]; ok {
				c.children[fd.Keyword] = dc.class
			} else if cls, ok := f.Class(kw); ok {
				c.children[fd.Keyword] = cls
			} else {
				return nil, fail(classPath(c.def.Keyword).Field("fields").Field(fd.Keyword), gopdm.CodeUnknownClass, "unknown child class %q", kw)
			}
		}
	}

	for _, c := range order {
		d, err := newDynamic(c)
		if err != nil {
			return nil, err
		}
		d.Destroy()
	}

	classes := make([]*gopdm.Class, 0, len(order))
	for _, c := range order {
		f.Register(c.class, func() gopdm.Handle {
			d, err := newDynamic(c)
			if err != nil {
				panic("classdef: " + err.Error())
			}
			return d
		})
		classes = append(classes, c.class)
	}
	return classes, nil
}

func hasDef(defs map[string]ClassDef, kw string) bool {
	_, ok := defs[kw]
	return ok
}

func checkKeyword(what, kw string) error {
	if !gopdm.IsValidKeyword(kw) || kw == gopdm.ClassKey || kw == gopdm.UUIDKey {
		return fail(gopdm.RootPath(), gopdm.CodeInvalidKeyword, "invalid %s keyword %q", what, kw)
	}
	return nil
}

func newDynamic(c *compiled) (*Dynamic, error) {
	d := &Dynamic{def: c}
	d.Init(d, c.class)
	if err := addFields(d, c); err != nil {
		return nil, err
	}
	return d, nil
}

func addFields(d *Dynamic, c *compiled) error {
	if c.parent != nil {
		if err := addFields(d, c.parent); err != nil {
			return err
		}
	}
	for _, fd := range c.def.Fields {
		if err := addField(d, c, fd); err != nil {
			return relocate(classPath(c.def.Keyword).Field("fields").Field(fd.Keyword), err)
		}
	}
	return nil
}

func addField(d *Dynamic, c *compiled, fd FieldDef) error {
	if err := checkKeyword("field", fd.Keyword); err != nil {
		return err
	}
	if _, dup := d.FindField(fd.Keyword); dup {
		return invalid(gopdm.CodeDuplicateKey, "keyword already used")
	}
	kinds := 0
	for _, s := range []string{fd.Type, fd.Child, fd.Children} {
		if s != "" {
			kinds++
		}
	}
	if kinds != 1 {
		return invalid(gopdm.CodeInvalidType, "exactly one of type, child and children must be set")
	}
	readable, writable, err := parseScripting(fd.Scripting)
	if err != nil {
		return err
	}
	switch {
	case fd.Child != "":
		cf := gopdm.NewChildField[gopdm.Handle](c.children[fd.Keyword])
		if fd.Doc != "" {
			cf.WithDoc(fd.Doc)
		}
		if readable || writable {
			cf.WithScripting(readable, writable)
		}
		if fd.Deprecated {
			cf.Deprecated()
		}
		gopdm.AddField(d, fd.Keyword, cf)
		return nil
	case fd.Children != "":
		af := gopdm.NewChildArrayField[gopdm.Handle](c.children[fd.Keyword])
		if fd.Doc != "" {
			af.WithDoc(fd.Doc)
		}
		if readable || writable {
			af.WithScripting(readable, writable)
		}
		if fd.Deprecated {
			af.Deprecated()
		}
		gopdm.AddField(d, fd.Keyword, af)
		return nil
	}
	b, ok := builders[fd.Type]
	if !ok {
		return invalid(gopdm.CodeUnsupported, "unsupported type %q", fd.Type)
	}
	if len(fd.Enum) > 0 && fd.Type != "string" {
		return invalid(gopdm.CodeInvalidType, "enum applies to string fields only")
	}
	if fd.Pattern != "" && fd.Type != "string" {
		return invalid(gopdm.CodeInvalidType, "pattern applies to string fields only")
	}
	return b(d, fd)
}

func parseScripting(s string) (readable, writable bool, err error) {
	switch s {
	case "":
		return false, false, nil
	case "r":
		return true, false, nil
	case "w":
		return false, true, nil
	case "rw":
		return true, true, nil
	}
	return false, false, invalid(gopdm.CodeValidation, "scripting must be r, w or rw, got %q", s)
}

type builder func(d *Dynamic, fd FieldDef) error

var builders = map[string]builder{
	"double":    number[float64],
	"float":     number[float32],
	"int32":     number[int32],
	"int64":     number[int64],
	"uint32":    number[uint32],
	"uint64":    number[uint64],
	"bool":      plain[bool],
	"string":    text,
	"timestamp": timestamp,
	"double[]":  plain[[]float64],
	"int32[]":   plain[[]int32],
	"int64[]":   plain[[]int64],
	"bool[]":    plain[[]bool],
	"string[]":  plain[[]string],
}

func decodeDefault[T any](fd FieldDef) (T, error) {
	var v T
	if fd.Default == nil {
		return v, nil
	}
	raw, err := json.Marshal(fd.Default)
	if err != nil {
		return v, failCause(gopdm.RootPath(), gopdm.CodeInvalidType, err, "default: %v", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, failCause(gopdm.RootPath(), gopdm.CodeInvalidType, err, "default %v is not a valid %s", fd.Default, fd.Type)
	}
	return v, nil
}

func finish[T any](d *Dynamic, f *gopdm.Field[T], fd FieldDef) error {
	if fd.Doc != "" {
		f.WithDoc(fd.Doc)
	}
	readable, writable, err := parseScripting(fd.Scripting)
	if err != nil {
		return err
	}
	if readable || writable {
		f.WithScripting(readable, writable)
	}
	if fd.Deprecated {
		f.Deprecated()
	}
	gopdm.AddField(d, fd.Keyword, f)
	return nil
}

func number[T rules.Number](d *Dynamic, fd FieldDef) error {
	def, err := decodeDefault[T](fd)
	if err != nil {
		return err
	}
	f := gopdm.NewField(def)
	switch {
	case fd.Min != nil && fd.Max != nil:
		if *fd.Min > *fd.Max {
			return invalid(gopdm.CodeValidation, "min %v is greater than max %v", *fd.Min, *fd.Max)
		}
		f.WithValidator(rules.Range(T(*fd.Min), T(*fd.Max)))
	case fd.Min != nil:
		f.WithValidator(rules.Min(T(*fd.Min)))
	case fd.Max != nil:
		f.WithValidator(rules.Max(T(*fd.Max)))
	}
	return finish(d, f, fd)
}

func plain[T any](d *Dynamic, fd FieldDef) error {
	if fd.Min != nil || fd.Max != nil {
		return invalid(gopdm.CodeInvalidType, "min and max apply to numeric fields only")
	}
	def, err := decodeDefault[T](fd)
	if err != nil {
		return err
	}
	return finish(d, gopdm.NewField(def), fd)
}

func text(d *Dynamic, fd FieldDef) error {
	if fd.Min != nil || fd.Max != nil {
		return invalid(gopdm.CodeInvalidType, "min and max apply to numeric fields only")
	}
	def, err := decodeDefault[string](fd)
	if err != nil {
		return err
	}
	f := gopdm.NewField(def)
	if len(fd.Enum) > 0 {
		f.WithValidator(rules.OneOf(fd.Enum...))
	}
	if fd.Pattern != "" {
		if _, err := regexp.Compile(fd.Pattern); err != nil {
			return failCause(gopdm.RootPath(), gopdm.CodeValidation, err, "pattern: %v", err)
		}
		f.WithValidator(rules.Pattern(fd.Pattern))
	}
	return finish(d, f, fd)
}

func timestamp(d *Dynamic, fd FieldDef) error {
	if fd.Min != nil || fd.Max != nil {
		return invalid(gopdm.CodeInvalidType, "min and max apply to numeric fields only")
	}
	tc := codec.TimeRFC3339()
	var def time.Time
	if fd.Default != nil {
		raw, err := json.Marshal(fd.Default)
		if err != nil {
			return failCause(gopdm.RootPath(), gopdm.CodeInvalidType, err, "default: %v", err)
		}
		if def, err = tc.DecodeValue(raw); err != nil {
			return failCause(gopdm.RootPath(), gopdm.CodeInvalidType, err, "default %v is not an RFC3339 time", fd.Default)
		}
	}
	return finish(d, gopdm.NewField(def).WithCodec(tc), fd)
}
