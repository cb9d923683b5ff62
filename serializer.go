package gopdm

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Serializer converts object graphs to and from JSON text. A Serializer is
// immutable once built; the With* methods return modified copies, so one
// value can be shared between goroutines as long as the graphs are not.
type Serializer struct {
	factory *Factory
	opt     SerializeOpt
	logger  *zap.Logger
}

// NewSerializer returns a serializer creating objects through factory.
func NewSerializer(factory *Factory, opts ...SerializeOpt) *Serializer {
	if factory == nil {
		panic("gopdm.NewSerializer: factory must not be nil")
	}
	s := &Serializer{factory: factory}
	if len(opts) > 0 {
		s.opt = opts[0]
	}
	return s
}

func (s *Serializer) clone() *Serializer {
	c := *s
	return &c
}

// WithType returns a copy writing the given serialization type.
func (s *Serializer) WithType(t SerializationType) *Serializer {
	c := s.clone()
	c.opt.Type = t
	return c
}

// WithUUIDs returns a copy with UUID output switched on or off.
func (s *Serializer) WithUUIDs(on bool) *Serializer {
	c := s.clone()
	c.opt.SuppressUUIDs = !on
	return c
}

// WithFieldSelector returns a copy only serializing fields accepted by fs.
func (s *Serializer) WithFieldSelector(fs FieldSelector) *Serializer {
	c := s.clone()
	c.opt.FieldSelector = fs
	return c
}

// WithIndent returns a copy pretty-printing its output.
func (s *Serializer) WithIndent(indent string) *Serializer {
	c := s.clone()
	c.opt.Indent = indent
	return c
}

// WithLogger returns a copy logging to l instead of the package logger.
func (s *Serializer) WithLogger(l *zap.Logger) *Serializer {
	c := s.clone()
	c.logger = l
	return c
}

func (s *Serializer) Factory() *Factory            { return s.factory }
func (s *Serializer) Type() SerializationType      { return s.opt.Type }
func (s *Serializer) SerializeUUIDs() bool         { return !s.opt.SuppressUUIDs }
func (s *Serializer) FieldSelector() FieldSelector { return s.opt.FieldSelector }
func (s *Serializer) Options() SerializeOpt        { return s.opt }

func (s *Serializer) log() *zap.Logger {
	if s.logger != nil {
		return s.logger
	}
	return Logger()
}

func (s *Serializer) selected(f FieldHandle) bool {
	return s.opt.FieldSelector == nil || s.opt.FieldSelector(f)
}

// WriteObjectToString encodes h. In data modes the SetupBeforeSave hooks run
// first, top-down.
func (s *Serializer) WriteObjectToString(h Handle) (string, error) {
	b, err := s.writeBytes(h)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Serializer) writeBytes(h Handle) ([]byte, error) {
	if isNilHandle(h) {
		return nil, newIssues("/", CodeInvalidType, "cannot write a nil object", nil)
	}
	o := h.AsObject()
	ws := &WriteState{s: s, path: RootPath()}
	var (
		out []byte
		err error
	)
	if s.opt.Type == Schema {
		out, err = ws.writeSchema(o)
	} else {
		if err := setupBeforeSave(o); err != nil {
			return nil, err
		}
		out, err = ws.writeRecord(o)
	}
	if err != nil {
		return nil, err
	}
	if s.opt.Indent != "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", s.opt.Indent); err != nil {
			return nil, newIssues("/", CodeParseError, "", err)
		}
		out = buf.Bytes()
	}
	return out, nil
}

// ReadObjectFromString populates h from text. The record's class must be h's
// class or one of its ancestors. Unknown keywords are skipped; a known
// keyword whose value cannot be decoded fails the read, possibly leaving h
// partially updated. InitAfterRead hooks run bottom-up on success.
func (s *Serializer) ReadObjectFromString(h Handle, text string) error {
	if isNilHandle(h) {
		return newIssues("/", CodeInvalidType, "cannot read into a nil object", nil)
	}
	if err := s.readable(); err != nil {
		return err
	}
	data := []byte(text)
	if err := s.check(data); err != nil {
		return err
	}
	rs := &ReadState{s: s, path: RootPath()}
	members, class, err := rs.decodeMembers(data)
	if err != nil {
		return err
	}
	o := h.AsObject()
	if err := rs.populate(o, members, class, true); err != nil {
		return err
	}
	return initAfterRead(o)
}

// CreateObjectFromString builds a new object of the class named in text and
// populates it. Unregistered classes yield an unknown_class issue.
func (s *Serializer) CreateObjectFromString(text string) (Handle, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	data := []byte(text)
	if err := s.check(data); err != nil {
		return nil, err
	}
	hdr, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	h, ok := s.factory.Create(hdr.Class)
	if !ok {
		return nil, unknownClass(RootPath(), hdr.Class)
	}
	rs := &ReadState{s: s, path: RootPath()}
	members, class, err := rs.decodeMembers(data)
	if err == nil {
		err = rs.populate(h.AsObject(), members, class, true)
	}
	if err == nil {
		err = initAfterRead(h.AsObject())
	}
	if err != nil {
		h.AsObject().Destroy()
		return nil, err
	}
	return h, nil
}

// CopyBySerialization writes h and reads the text back into a fresh object,
// so copies share the round-trip's fidelity.
func (s *Serializer) CopyBySerialization(h Handle) (Handle, error) {
	text, err := s.WithType(DataFull).WriteObjectToString(h)
	if err != nil {
		return nil, err
	}
	return s.CreateObjectFromString(text)
}

// CopyAndCastBySerialization copies h into a new object of class
// destinationKeyword. Source and destination classes must be related through
// the inheritance stack in either direction; otherwise a class_mismatch issue
// is returned and nothing is created.
func (s *Serializer) CopyAndCastBySerialization(h Handle, destinationKeyword string) (Handle, error) {
	if isNilHandle(h) {
		return nil, newIssues("/", CodeInvalidType, "cannot copy a nil object", nil)
	}
	src := h.AsObject()
	destClass, ok := s.factory.Class(destinationKeyword)
	if !ok {
		return nil, unknownClass(RootPath(), destinationKeyword)
	}
	sourceInheritsDestination := src.Is(destinationKeyword)
	destinationInheritsSource := destClass.Is(src.ClassKeyword())
	if !sourceInheritsDestination && !destinationInheritsSource {
		return nil, classMismatch(RootPath(), src.ClassKeyword(), destinationKeyword)
	}
	data, err := s.WithType(DataFull).writeBytes(h)
	if err != nil {
		return nil, err
	}
	dest, ok := s.factory.Create(destinationKeyword)
	if !ok {
		return nil, unknownClass(RootPath(), destinationKeyword)
	}
	rs := &ReadState{s: s, path: RootPath()}
	members, class, err := rs.decodeMembers(data)
	if err == nil {
		err = rs.populate(dest.AsObject(), members, class, false)
	}
	if err == nil {
		err = initAfterRead(dest.AsObject())
	}
	if err != nil {
		dest.AsObject().Destroy()
		return nil, err
	}
	return dest, nil
}

// ClassSchema writes the schema of a registered class from a blank instance.
func (s *Serializer) ClassSchema(keyword string) (string, error) {
	h, ok := s.factory.Create(keyword)
	if !ok {
		return "", unknownClass(RootPath(), keyword)
	}
	defer h.AsObject().Destroy()
	return s.WithType(Schema).WriteObjectToString(h)
}

func (s *Serializer) readable() error {
	if s.opt.Type == Schema {
		return Issues{{Path: "/", Code: CodeUnsupported, Message: ErrSchemaModeRead.Error(), Severity: Error, Cause: ErrSchemaModeRead}}
	}
	return nil
}

func unknownClass(p PathRef, keyword string) Issues {
	return Issues{{
		Path:     p.Pointer(),
		Code:     CodeUnknownClass,
		Message:  "unknown class " + strconv.Quote(keyword),
		Severity: Error,
		Cause:    ErrNotFound,
		Params:   map[string]any{"class": keyword},
	}}
}

func classMismatch(p PathRef, got, want string) Issues {
	return Issues{{
		Path:     p.Pointer(),
		Code:     CodeClassMismatch,
		Message:  "class " + strconv.Quote(got) + " does not match " + strconv.Quote(want),
		Severity: Error,
		Params:   map[string]any{"class": got, "expected": want},
	}}
}

// wrapErr turns a failure from a capability into Issues located at p.
func wrapErr(p PathRef, code string, err error) error {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	return Issues{{Path: p.Pointer(), Code: code, Message: err.Error(), Severity: Error, Cause: err}}
}
