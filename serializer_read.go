package gopdm

import (
	"bytes"
	"errors"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	eng "github.com/reoring/gopdm/internal/engine"
)

// ReadState is handed to FieldIO capabilities while reading. It carries the
// serializer and the JSON Pointer of the value being read.
type ReadState struct {
	s    *Serializer
	path PathRef
}

func (rs *ReadState) Serializer() *Serializer { return rs.s }
func (rs *ReadState) Path() PathRef           { return rs.path }

func (rs *ReadState) enter(keyword string) *ReadState {
	return &ReadState{s: rs.s, path: rs.path.Field(keyword)}
}

// Index returns the state for element i of an array value.
func (rs *ReadState) Index(i int) *ReadState {
	return &ReadState{s: rs.s, path: rs.path.Index(i)}
}

// ReadObject builds an object from a nested record through the factory. The
// record's class must be base or derive from it, and accept (when non-nil)
// must agree to take the object.
func (rs *ReadState) ReadObject(data []byte, base *Class, accept func(Handle) bool) (Handle, error) {
	members, class, err := rs.decodeMembers(data)
	if err != nil {
		return nil, err
	}
	h, ok := rs.s.factory.Create(class)
	if !ok {
		return nil, unknownClass(rs.path, class)
	}
	o := h.AsObject()
	if (base != nil && !o.Is(base.keyword)) || (accept != nil && !accept(h)) {
		o.Destroy()
		want := ObjectClass.keyword
		if base != nil {
			want = base.keyword
		}
		return nil, classMismatch(rs.path, class, want)
	}
	if err := rs.populate(o, members, class, true); err != nil {
		o.Destroy()
		return nil, err
	}
	return h, nil
}

// check applies the size limit and the duplicate-key and depth enforcement
// to a whole document before anything is decoded.
func (s *Serializer) check(data []byte) error {
	if s.opt.MaxBytes > 0 && int64(len(data)) > s.opt.MaxBytes {
		return Issues{{
			Path:     "/",
			Code:     CodeTruncated,
			Message:  "document exceeds " + strconv.FormatInt(s.opt.MaxBytes, 10) + " bytes",
			Severity: Error,
		}}
	}
	dup := eng.DupError
	if s.opt.Strictness != nil {
		dup = toEngineDup(s.opt.Strictness.OnDuplicateKey)
	}
	if dup == eng.DupIgnore && s.opt.MaxDepth <= 0 {
		return nil
	}
	src := eng.WrapWithEnforcement(eng.NewBytes(data), eng.EnforceOptions{
		OnDuplicate: dup,
		MaxDepth:    s.opt.MaxDepth,
		IssueSink: func(si eng.SimpleIssue) {
			s.log().Warn("duplicate key in document", zap.String("path", si.Path))
		},
	})
	if err := eng.Drain(src); err != nil {
		var ie eng.IssueError
		if errors.As(err, &ie) {
			return Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Severity: Error}}
		}
		return newIssues("/", CodeParseError, "", err)
	}
	return nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch {
	case s >= Error:
		return eng.DupError
	case s == Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

// decodeMembers splits a record into its members and validates the Class tag.
func (rs *ReadState) decodeMembers(data []byte) (map[string]json.RawMessage, string, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, "", Issues{{Path: rs.path.Pointer(), Code: CodeParseError, Message: "expected a JSON object", Severity: Error, Cause: err}}
	}
	if members == nil {
		return nil, "", Issues{{Path: rs.path.Pointer(), Code: CodeParseError, Message: "expected a JSON object, got null", Severity: Error}}
	}
	raw, ok := members[ClassKey]
	if !ok {
		return nil, "", Issues{rs.path.Issue(CodeClassMissing, "record has no "+ClassKey+" tag")}
	}
	var class string
	if err := json.Unmarshal(raw, &class); err != nil {
		return nil, "", Issues{{Path: rs.path.Field(ClassKey).Pointer(), Code: CodeInvalidType, Message: ClassKey + " must be a string", Severity: Error, Cause: err}}
	}
	return members, class, nil
}

// populate assigns record members to o's fields in declaration order.
func (rs *ReadState) populate(o *Object, members map[string]json.RawMessage, class string, checkClass bool) error {
	s := rs.s
	if checkClass && !o.Is(class) {
		return classMismatch(rs.path, class, o.ClassKeyword())
	}
	if s.SerializeUUIDs() {
		if raw, ok := members[UUIDKey]; ok && !bytes.Equal(raw, jsonNull) {
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				return Issues{{Path: rs.path.Field(UUIDKey).Pointer(), Code: CodeInvalidType, Message: UUIDKey + " must be a string", Severity: Error, Cause: err}}
			}
			o.uuid = id
		}
	}
	for _, f := range o.fields {
		kw := f.Keyword()
		raw, ok := members[kw]
		if !ok {
			continue
		}
		if !s.selected(f) || !f.IsWritable() {
			continue
		}
		fio, ok := CapabilityOf[FieldIO](f)
		if !ok {
			continue
		}
		fs := rs.enter(kw)
		if err := fio.ReadValue(fs, raw); err != nil {
			return locate(fs.path, f, err)
		}
	}
	if s.log().Core().Enabled(zap.DebugLevel) {
		var unknown []string
		for k := range members {
			if _, known := o.index[k]; !known && !isReservedKeyword(k) {
				unknown = append(unknown, k)
			}
		}
		slices.Sort(unknown)
		for _, k := range unknown {
			s.log().Debug("skipping unknown field", zap.String("class", class), zap.String("field", k), zap.String("path", rs.path.Pointer()))
		}
	}
	return nil
}

// locate rewrites field-relative issue paths (from validators) to the
// document pointer of the field. Child fields report full paths already.
func locate(p PathRef, f FieldHandle, err error) error {
	iss, ok := AsIssues(err)
	if !ok {
		return wrapErr(p, CodeInvalidType, err)
	}
	if _, child := f.(ChildFieldHandle); child {
		return iss
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		it.Path = p.Pointer()
		out[i] = it
	}
	return out
}
