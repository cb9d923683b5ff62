package gopdm

import (
	"bytes"

	json "github.com/goccy/go-json"

	js "github.com/reoring/gopdm/jsonschema"
)

// childIO serializes the objects owned by a child field as nested records.
type childIO struct {
	field childOwner
}

func (c *childIO) Attach(Capable) {}

func (c *childIO) WriteValue(ws *WriteState) ([]byte, error) {
	kids := c.field.Children()
	if !c.field.IsArray() {
		if len(kids) == 0 {
			return []byte("null"), nil
		}
		return ws.WriteObject(kids[0])
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, k := range kids {
		if i > 0 {
			b.WriteByte(',')
		}
		raw, err := ws.Index(i).WriteObject(k)
		if err != nil {
			return nil, err
		}
		b.Write(raw)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (c *childIO) ReadValue(rs *ReadState, data []byte) error {
	if bytes.Equal(data, jsonNull) {
		c.field.readChildren(nil)
		return nil
	}
	if !c.field.IsArray() {
		h, err := rs.ReadObject(data, c.field.ChildClass(), c.field.accepts)
		if err != nil {
			return err
		}
		c.field.readChildren([]Handle{h})
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Issues{{Path: rs.Path().Pointer(), Code: CodeInvalidType, Message: "expected an array of records", Severity: Error, Cause: err}}
	}
	built := make([]Handle, 0, len(items))
	for i, raw := range items {
		h, err := rs.Index(i).ReadObject(raw, c.field.ChildClass(), c.field.accepts)
		if err != nil {
			for _, b := range built {
				b.AsObject().Destroy()
			}
			return err
		}
		built = append(built, h)
	}
	c.field.readChildren(built)
	return nil
}

func (c *childIO) ValueSchema(ws *WriteState) (*js.Schema, error) {
	ref := &js.Schema{Ref: ObjectSchemaRef(c.field.ChildClass().Keyword())}
	s := ref
	if c.field.IsArray() {
		s = &js.Schema{Type: "array", Items: ref}
	}
	s.Description = c.field.Documentation()
	return s, nil
}
