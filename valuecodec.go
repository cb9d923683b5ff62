package gopdm

import js "github.com/reoring/gopdm/jsonschema"

// ValueCodec converts a field value to and from its JSON representation.
// Fields without a codec use go-json with the value's Go type.
type ValueCodec[T any] interface {
	EncodeValue(v T) ([]byte, error)
	DecodeValue(data []byte) (T, error)
	ValueSchema() *js.Schema
}
