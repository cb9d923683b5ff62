package gopdm

import (
	"bytes"
	"reflect"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/gopdm/internal/engine"
	js "github.com/reoring/gopdm/jsonschema"
)

// FieldIO is the serialization capability of a field. Fields without it are
// skipped by the Serializer.
type FieldIO interface {
	Capability
	// WriteValue encodes the field value. A nil result is written as null.
	WriteValue(ws *WriteState) ([]byte, error)
	// ReadValue decodes data into the field. An explicit null resets the
	// field to its zero value (or empties a child field).
	ReadValue(rs *ReadState, data []byte) error
	// ValueSchema describes the encoded value.
	ValueSchema(ws *WriteState) (*js.Schema, error)
}

// anyType fields are decoded by the token engine, which keeps numbers as
// json.Number so they re-encode unchanged.
var anyType = reflect.TypeFor[any]()

type valueIO[T any] struct {
	field *Field[T]
}

func (c *valueIO[T]) Attach(Capable) {}

func (c *valueIO[T]) encode(v T) ([]byte, error) {
	if c.field.codec != nil {
		return c.field.codec.EncodeValue(v)
	}
	return json.Marshal(v)
}

func (c *valueIO[T]) WriteValue(ws *WriteState) ([]byte, error) {
	v, err := c.field.Get()
	if err != nil {
		return nil, err
	}
	return c.encode(v)
}

func (c *valueIO[T]) ReadValue(rs *ReadState, data []byte) error {
	var v T
	if bytes.Equal(data, jsonNull) {
		return c.field.SetValue(v)
	}
	if c.field.codec != nil {
		dv, err := c.field.codec.DecodeValue(data)
		if err != nil {
			return err
		}
		v = dv
	} else if reflect.TypeFor[T]() == anyType {
		dv, err := eng.DecodeAnyFromSource(eng.NewBytes(data))
		if err != nil {
			return Issues{{Path: rs.Path().Pointer(), Code: CodeParseError, Message: "cannot decode value", Severity: Error, Cause: err}}
		}
		v, _ = dv.(T)
	} else if err := json.Unmarshal(data, &v); err != nil {
		return Issues{{
			Path:     rs.Path().Pointer(),
			Code:     CodeInvalidType,
			Message:  "cannot decode value as " + c.field.PortableType(),
			Severity: Error,
			Cause:    err,
		}}
	}
	return c.field.SetValue(v)
}

func (c *valueIO[T]) ValueSchema(ws *WriteState) (*js.Schema, error) {
	var s *js.Schema
	if c.field.codec != nil {
		s = c.field.codec.ValueSchema()
	} else {
		s = SchemaForType(reflect.TypeFor[T]())
	}
	if s == nil {
		s = &js.Schema{}
	}
	if enc, err := c.encode(c.field.def); err == nil {
		var d any
		if json.Unmarshal(enc, &d) == nil {
			s.Default = d
		}
	}
	s.Description = c.field.Documentation()
	if !c.field.IsWritable() {
		s.ReadOnly = true
	}
	if val, ok := CapabilityOf[*Validation[T]](c.field); ok {
		val.DecorateSchema(s)
	}
	if d, ok := c.field.codec.(SchemaDecorator); ok {
		d.DecorateSchema(s)
	}
	return s, nil
}
