package gopdm

import (
	"reflect"
	"time"

	js "github.com/reoring/gopdm/jsonschema"
)

var (
	timeType   = reflect.TypeFor[time.Time]()
	handleType = reflect.TypeFor[Handle]()
)

// PortableTypeName names a Go type in the language-neutral vocabulary shared
// with remote clients and code generators: double, float, bool, int32,
// uint32, int64, uint64, string, timestamp, bytes, object, any and T[] for
// sequences. A nil type is "void".
func PortableTypeName(t reflect.Type) string {
	if t == nil {
		return "void"
	}
	if t == timeType {
		return "timestamp"
	}
	if t.Implements(handleType) {
		return "object"
	}
	switch t.Kind() {
	case reflect.Float64:
		return "double"
	case reflect.Float32:
		return "float"
	case reflect.Bool:
		return "bool"
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return "int32"
	case reflect.Int, reflect.Int64:
		return "int64"
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return "uint32"
	case reflect.Uint, reflect.Uint64:
		return "uint64"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytes"
		}
		return PortableTypeName(t.Elem()) + "[]"
	case reflect.Pointer:
		return PortableTypeName(t.Elem())
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return "any"
}

// SchemaForType returns a fresh JSON schema describing values of t as
// go-json encodes them.
func SchemaForType(t reflect.Type) *js.Schema {
	if t == nil {
		return &js.Schema{Type: "null"}
	}
	if t == timeType {
		return &js.Schema{Type: "string", Format: "date-time"}
	}
	switch t.Kind() {
	case reflect.Float64:
		return &js.Schema{Type: "number", Format: "double"}
	case reflect.Float32:
		return &js.Schema{Type: "number", Format: "float"}
	case reflect.Bool:
		return &js.Schema{Type: "boolean"}
	case reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint, reflect.Uint64:
		return &js.Schema{Type: "integer", Format: PortableTypeName(t)}
	case reflect.String:
		return &js.Schema{Type: "string"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &js.Schema{Type: "string", Format: "byte"}
		}
		return &js.Schema{Type: "array", Items: SchemaForType(t.Elem())}
	case reflect.Pointer:
		return SchemaForType(t.Elem())
	case reflect.Map:
		return &js.Schema{Type: "object", AdditionalProperties: SchemaForType(t.Elem())}
	case reflect.Struct:
		return &js.Schema{Type: "object"}
	}
	return &js.Schema{}
}
