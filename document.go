package gopdm

import "errors"

// DocumentClass is the base class of graph roots persisted to files.
var DocumentClass = DefineClass("Document", ObjectClass, ClassDoc("Root of a persisted object graph"))

// Document is a graph root with an identifier and a backing file name.
// Embed it and call InitDocument from the derived type's constructor.
type Document struct {
	Object
	ID       *Field[string]
	FileName *Field[string]
}

// NewDocument returns a bare document.
func NewDocument() *Document {
	d := &Document{}
	d.InitDocument(d, DocumentClass)
	return d
}

// InitDocument initializes the embedded Object with class and declares the
// document fields. The file name is not serialized.
func (d *Document) InitDocument(self Handle, class *Class) {
	d.Init(self, class)
	d.ID = AddField(self, "id", NewField("").WithDoc("Document identifier").WithScripting(true, false))
	d.FileName = AddField(self, "fileName", NewField("").WithoutIO())
}

var errNoFileName = errors.New("gopdm: document has no file name")

// Save writes the document to its file.
func (d *Document) Save(s *Serializer) error {
	name := d.FileName.Value()
	if name == "" {
		return ioIssue("write", "", errNoFileName)
	}
	return s.WriteFile(name, d.Self())
}

// Load replaces the document content with the file content.
func (d *Document) Load(s *Serializer) error {
	name := d.FileName.Value()
	if name == "" {
		return ioIssue("read", "", errNoFileName)
	}
	return s.ReadFile(name, d.Self())
}
