package gopdm

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// WriteState is handed to FieldIO capabilities while writing. It carries the
// serializer, the record nesting level (0 for the root) and the JSON Pointer
// of the value being written.
type WriteState struct {
	s     *Serializer
	level int
	path  PathRef
}

func (ws *WriteState) Serializer() *Serializer { return ws.s }
func (ws *WriteState) Level() int              { return ws.level }
func (ws *WriteState) Path() PathRef           { return ws.path }

func (ws *WriteState) enter(keyword string) *WriteState {
	return &WriteState{s: ws.s, level: ws.level, path: ws.path.Field(keyword)}
}

// Index returns the state for element i of an array value.
func (ws *WriteState) Index(i int) *WriteState {
	return &WriteState{s: ws.s, level: ws.level, path: ws.path.Index(i)}
}

// WriteObject encodes a nested object record one level down.
func (ws *WriteState) WriteObject(h Handle) ([]byte, error) {
	nested := &WriteState{s: ws.s, level: ws.level + 1, path: ws.path}
	return nested.writeRecord(h.AsObject())
}

var jsonNull = []byte("null")

func writeMember(b *bytes.Buffer, key string, raw []byte) error {
	if b.Len() > 1 {
		b.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	b.Write(k)
	b.WriteByte(':')
	b.Write(raw)
	return nil
}

// writeRecord emits {"Class":..., "UUID":..., <fields in declaration order>}.
// Nested records of a skeleton carry only Class and UUID.
func (ws *WriteState) writeRecord(o *Object) ([]byte, error) {
	s := ws.s
	var b bytes.Buffer
	b.WriteByte('{')
	class, _ := json.Marshal(o.ClassKeyword())
	if err := writeMember(&b, ClassKey, class); err != nil {
		return nil, err
	}
	if s.SerializeUUIDs() && o.uuid != "" {
		id, _ := json.Marshal(o.uuid)
		if err := writeMember(&b, UUIDKey, id); err != nil {
			return nil, err
		}
	}
	if ws.level == 0 || s.opt.Type != DataSkeleton {
		for _, f := range o.fields {
			if !s.selected(f) || !f.IsReadable() || IsDeprecated(f) {
				continue
			}
			fio, ok := CapabilityOf[FieldIO](f)
			if !ok {
				continue
			}
			kw := f.Keyword()
			fs := ws.enter(kw)
			if !IsValidKeyword(kw) || isReservedKeyword(kw) {
				return nil, Issues{fs.path.Issue(CodeInvalidKeyword, "cannot write invalid field keyword "+quote(kw))}
			}
			raw, err := fio.WriteValue(fs)
			if err != nil {
				return nil, wrapErr(fs.path, CodeInvalidType, err)
			}
			if raw == nil {
				raw = jsonNull
			}
			if err := writeMember(&b, kw, raw); err != nil {
				return nil, err
			}
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
