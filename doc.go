// Package gopdm is a reflection and serialization toolkit for object graphs.
//
// Applications declare typed objects as graphs of named fields. gopdm walks,
// validates, serializes and remotely invokes those graphs without per-class
// marshalling code:
//
// - Objects own ordered, keyword-named fields; child fields own sub-objects and form a tree
// - Capabilities (serialization, remote exposure, documentation, validation) attach to fields by type
// - A keyword-based Factory plus per-class inheritance stacks give polymorphic reconstruction
// - A JSON Serializer with "Class"/"UUID" tagged records, skeleton and schema modes
// - Methods with JSON arguments in and a type-tagged JSON result out
// - A stable error model via Issues (JSON Pointer, code, message, severity)
//
// Design policy:
// - Keep the public core in the root package; helpers live under internal/.
// - Validators live under rules/, value codecs under codec/, runtime class definitions under
//   classdef/, the HTTP exposure under remote/, persistence under store/ and the CLI under cmd/gopdm.
// - The core has no hidden global state except the logger; factories are passed explicitly.
//
// Typical usage:
//
//	var ItemClass = gopdm.DefineClass("Item", gopdm.ObjectClass)
//
//	type Item struct {
//		gopdm.Object
//		Name *gopdm.Field[string]
//	}
//
//	func NewItem() *Item {
//		it := &Item{}
//		it.Init(it, ItemClass)
//		it.Name = gopdm.AddField(it, "name", gopdm.NewField(""))
//		return it
//	}
//
//	f := gopdm.NewFactory()
//	gopdm.RegisterCreator(f, ItemClass, NewItem)
//	s := gopdm.NewSerializer(f)
//	text, err := s.WriteObjectToString(item)
//	copy, err := s.CreateObjectFromString(text)
package gopdm
