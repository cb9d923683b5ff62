package store_test

import (
	"github.com/reoring/gopdm"
)

var noteClass = gopdm.DefineClass("Note", gopdm.ObjectClass)

type note struct {
	gopdm.Object
	Text *gopdm.Field[string]
}

func newNote() *note {
	n := &note{}
	n.Init(n, noteClass)
	n.Text = gopdm.AddField(n, "text", gopdm.NewField(""))
	return n
}

func newSerializer() *gopdm.Serializer {
	f := gopdm.NewFactory()
	gopdm.RegisterCreator(f, noteClass, newNote)
	return gopdm.NewSerializer(f)
}

func sampleNote(text string) *note {
	n := newNote()
	if err := n.Text.SetValue(text); err != nil {
		panic(err)
	}
	return n
}
