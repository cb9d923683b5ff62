package codec

import (
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/gopdm"
	js "github.com/reoring/gopdm/jsonschema"
)

// Enum returns a ValueCodec for string-backed enumerations. Only the listed
// values are read; the schema lists them under enum.
func Enum[E ~string](values ...E) gopdm.ValueCodec[E] {
	if len(values) == 0 {
		panic("codec.Enum: at least one value is required")
	}
	return enumCodec[E]{values: slices.Clone(values)}
}

type enumCodec[E ~string] struct {
	values []E
}

func (c enumCodec[E]) EncodeValue(v E) ([]byte, error) {
	return json.Marshal(string(v))
}

func (c enumCodec[E]) DecodeValue(data []byte) (E, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", gopdm.Issues{{Path: "/", Code: gopdm.CodeInvalidType, Message: "expected a string", Severity: gopdm.Error, Cause: err}}
	}
	v := E(s)
	if !slices.Contains(c.values, v) {
		return "", gopdm.Issues{{
			Path:     "/",
			Code:     gopdm.CodeInvalidType,
			Message:  "value " + quote(s) + " is not one of " + c.list(),
			Severity: gopdm.Error,
			Params:   map[string]any{"got": s},
		}}
	}
	return v, nil
}

func (c enumCodec[E]) ValueSchema() *js.Schema {
	s := &js.Schema{Type: "string"}
	for _, v := range c.values {
		s.Enum = append(s.Enum, string(v))
	}
	return s
}

func (c enumCodec[E]) list() string {
	parts := make([]string, len(c.values))
	for i, v := range c.values {
		parts[i] = string(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func quote(s string) string { return "\"" + s + "\"" }
