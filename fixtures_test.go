package gopdm_test

import (
	"errors"

	"github.com/reoring/gopdm"
)

var (
	itemClass        = gopdm.DefineClass("Item", gopdm.ObjectClass, gopdm.ClassDoc("A named value"))
	specialItemClass = gopdm.DefineClass("SpecialItem", itemClass)
	containerClass   = gopdm.DefineClass("Container", gopdm.ObjectClass)
	numbersClass     = gopdm.DefineClass("Numbers", gopdm.ObjectClass)
	hookedClass      = gopdm.DefineClass("Hooked", gopdm.ObjectClass)
	presetClass      = gopdm.DefineClass("Preset", gopdm.ObjectClass)
	legacyClass      = gopdm.DefineClass("Legacy", gopdm.ObjectClass)
)

// itemLike is satisfied by item and everything embedding it.
type itemLike interface {
	gopdm.Handle
	asItem() *item
}

type item struct {
	gopdm.Object
	Name  *gopdm.Field[string]
	Value *gopdm.Field[float64]
}

func (it *item) asItem() *item { return it }

func (it *item) initItem(self gopdm.Handle, class *gopdm.Class) {
	it.Init(self, class)
	it.Name = gopdm.AddField(self, "name", gopdm.NewField("").WithDoc("Display name"))
	it.Value = gopdm.AddField(self, "value", gopdm.NewField(0.0))
}

func newItem() *item {
	it := &item{}
	it.initItem(it, itemClass)
	return it
}

func namedItem(name string) *item {
	it := newItem()
	if err := it.Name.SetValue(name); err != nil {
		panic(err)
	}
	return it
}

type specialItem struct {
	item
	Color *gopdm.Field[string]
}

func newSpecialItem() *specialItem {
	s := &specialItem{}
	s.initItem(s, specialItemClass)
	s.Color = gopdm.AddField(s, "color", gopdm.NewField("red"))
	return s
}

type container struct {
	gopdm.Object
	Title *gopdm.Field[string]
	Main  *gopdm.ChildField[itemLike]
	Items *gopdm.ChildArrayField[itemLike]
}

func newContainer() *container {
	c := &container{}
	c.Init(c, containerClass)
	c.Title = gopdm.AddField(c, "title", gopdm.NewField("untitled"))
	c.Main = gopdm.AddField(c, "main", gopdm.NewChildField[itemLike](itemClass))
	c.Items = gopdm.AddField(c, "items", gopdm.NewChildArrayField[itemLike](itemClass).WithDoc("Owned items"))
	return c
}

type numbers struct {
	gopdm.Object
	D    *gopdm.Field[float64]
	F    *gopdm.Field[float32]
	I    *gopdm.Field[int32]
	U    *gopdm.Field[uint64]
	B    *gopdm.Field[bool]
	Tags *gopdm.Field[[]string]
}

func newNumbers() *numbers {
	n := &numbers{}
	n.Init(n, numbersClass)
	n.D = gopdm.AddField(n, "double", gopdm.NewField(0.0))
	n.F = gopdm.AddField(n, "float", gopdm.NewField(float32(0)))
	n.I = gopdm.AddField(n, "int", gopdm.NewField(int32(0)))
	n.U = gopdm.AddField(n, "uint", gopdm.NewField(uint64(0)))
	n.B = gopdm.AddField(n, "flag", gopdm.NewField(false))
	n.Tags = gopdm.AddField(n, "tags", gopdm.NewField([]string(nil)))
	return n
}

// preset starts out with non-null values, including a child built by the
// constructor.
type preset struct {
	gopdm.Object
	Tags *gopdm.Field[[]string]
	Main *gopdm.ChildField[itemLike]
}

func newPreset() *preset {
	p := &preset{}
	p.Init(p, presetClass)
	p.Tags = gopdm.AddField(p, "tags", gopdm.NewField([]string{"x", "y"}))
	p.Main = gopdm.AddField(p, "main", gopdm.NewChildField[itemLike](itemClass))
	p.Main.SetObject(namedItem("default"))
	return p
}

// legacy still reads the field it used to call "caption".
type legacy struct {
	gopdm.Object
	Title   *gopdm.Field[string]
	Caption *gopdm.Field[string]
	Old     *gopdm.ChildArrayField[*item]
}

func newLegacy() *legacy {
	l := &legacy{}
	l.Init(l, legacyClass)
	l.Title = gopdm.AddField(l, "title", gopdm.NewField(""))
	l.Caption = gopdm.AddField(l, "caption", gopdm.NewField("").Deprecated())
	l.Old = gopdm.AddField(l, "old", gopdm.NewChildArrayField[*item](itemClass).Deprecated())
	return l
}

// hooked records its lifecycle hooks into a shared log.
type hooked struct {
	gopdm.Object
	Label *gopdm.Field[string]
	Kids  *gopdm.ChildArrayField[*hooked]
	log   *[]string
	fail  bool
}

func newHooked(log *[]string) *hooked {
	h := &hooked{log: log}
	h.Init(h, hookedClass)
	h.Label = gopdm.AddField(h, "label", gopdm.NewField(""))
	h.Kids = gopdm.AddField(h, "kids", gopdm.NewChildArrayField[*hooked](hookedClass))
	return h
}

func (h *hooked) InitAfterRead() error {
	*h.log = append(*h.log, "read:"+h.Label.Value())
	if h.Label.Value() == "bad" {
		return errors.New("bad label")
	}
	return nil
}

func (h *hooked) SetupBeforeSave() error {
	*h.log = append(*h.log, "save:"+h.Label.Value())
	return nil
}

func newTestFactory() *gopdm.Factory {
	f := gopdm.NewFactory()
	gopdm.RegisterCreator(f, itemClass, newItem)
	gopdm.RegisterCreator(f, specialItemClass, newSpecialItem)
	gopdm.RegisterCreator(f, containerClass, newContainer)
	gopdm.RegisterCreator(f, numbersClass, newNumbers)
	return f
}

// sampleContainer builds the Obj A/B/C container.
func sampleContainer() *container {
	c := newContainer()
	for _, n := range []string{"Obj A", "Obj B", "Obj C"} {
		c.Items.PushBack(namedItem(n))
	}
	return c
}

type maxLen int

func (m maxLen) Validate(s string) error {
	if len(s) > int(m) {
		return errors.New("too long")
	}
	return nil
}
func (maxLen) Severity() gopdm.Severity { return gopdm.Error }
func (maxLen) Name() string             { return "maxLen" }

type warnEmpty struct{}

func (warnEmpty) Validate(s string) error {
	if s == "" {
		return errors.New("empty")
	}
	return nil
}
func (warnEmpty) Severity() gopdm.Severity { return gopdm.Warn }
