package codec

import (
	json "github.com/goccy/go-json"

	"github.com/reoring/gopdm"
	js "github.com/reoring/gopdm/jsonschema"
)

// Identity returns a ValueCodec encoding T with go-json unchanged but
// describing it with the provided schema. Use it to document values whose
// Go type alone says too little (a string holding a URL, a map with a
// fixed set of keys).
func Identity[T any](schema *js.Schema) gopdm.ValueCodec[T] {
	return identityCodec[T]{schema: schema}
}

type identityCodec[T any] struct {
	schema *js.Schema
}

func (identityCodec[T]) EncodeValue(v T) ([]byte, error) { return json.Marshal(v) }

func (identityCodec[T]) DecodeValue(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, gopdm.Issues{{Path: "/", Code: gopdm.CodeInvalidType, Message: err.Error(), Severity: gopdm.Error, Cause: err}}
	}
	return v, nil
}

// ValueSchema returns a copy so field decorations never leak into the
// shared schema.
func (c identityCodec[T]) ValueSchema() *js.Schema {
	if c.schema == nil {
		return &js.Schema{}
	}
	cp := *c.schema
	return &cp
}
