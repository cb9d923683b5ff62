package gopdm

import "bytes"

// WriteFieldValue encodes the value of a single field, as it would appear in
// its owner's record. Empty child fields encode as null.
func (s *Serializer) WriteFieldValue(f FieldHandle) ([]byte, error) {
	fio, p, err := fieldIOOf(f)
	if err != nil {
		return nil, err
	}
	if !f.IsReadable() {
		return nil, Issues{p.Issue(CodeUnsupported, "field "+quote(f.Keyword())+" is not readable")}
	}
	raw, err := fio.WriteValue(&WriteState{s: s, path: p})
	if err != nil {
		return nil, wrapErr(p, CodeInvalidType, err)
	}
	if raw == nil {
		return append([]byte(nil), jsonNull...), nil
	}
	return raw, nil
}

// ReadFieldValue decodes data into a single field. A JSON null resets the
// field, matching record reads.
func (s *Serializer) ReadFieldValue(f FieldHandle, data []byte) error {
	if err := s.readable(); err != nil {
		return err
	}
	fio, p, err := fieldIOOf(f)
	if err != nil {
		return err
	}
	if !f.IsWritable() {
		return Issues{p.Issue(CodeUnsupported, "field "+quote(f.Keyword())+" is read-only")}
	}
	data = bytes.TrimSpace(data)
	if err := s.check(data); err != nil {
		return err
	}
	if err := fio.ReadValue(&ReadState{s: s, path: p}, data); err != nil {
		return locate(p, f, err)
	}
	return nil
}

func fieldIOOf(f FieldHandle) (FieldIO, PathRef, error) {
	if f == nil {
		return nil, nil, newIssues("/", CodeInvalidType, "nil field", nil)
	}
	p := RootPath().Field(f.Keyword())
	fio, ok := CapabilityOf[FieldIO](f)
	if !ok {
		return nil, p, Issues{p.Issue(CodeUnsupported, "field "+quote(f.Keyword())+" is not serializable")}
	}
	return fio, p, nil
}
