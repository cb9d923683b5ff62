package gopdm

import (
	"bytes"
	"context"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"

	js "github.com/reoring/gopdm/jsonschema"
)

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
)

// Method is a named function declared on an object and callable with JSON
// arguments. Methods are built from plain Go funcs, usually closures over
// the owning object:
//
//	gopdm.AddMethod(c, "scale", func(k float64) float64 { ... }, "factor")
//
// A leading context.Context parameter receives the caller's context and is
// not counted as an argument. A trailing error result is reported by Execute
// instead of being encoded.
type Method struct {
	keyword  string
	owner    *Object
	fn       reflect.Value
	withCtx  bool
	args     []reflect.Type
	argNames []string
	result   reflect.Type
	withErr  bool
	isConst  bool
	caps     capabilitySet
}

// AddMethod declares a method on owner. It panics when fn is not a func,
// is variadic, has an unsupported signature, when the keyword is invalid or
// taken, or when argNames does not name every argument.
func AddMethod(owner Handle, keyword string, fn any, argNames ...string) *Method {
	if isNilHandle(owner) {
		panic("gopdm.AddMethod: owner must not be nil")
	}
	o := owner.AsObject()
	o.mustInit("AddMethod")
	if !IsValidKeyword(keyword) || isReservedKeyword(keyword) {
		panic("gopdm.AddMethod: invalid method keyword " + quote(keyword))
	}
	if _, dup := o.FindMethod(keyword); dup {
		panic("gopdm.AddMethod: duplicate method keyword " + quote(keyword) + " on " + o.class.keyword)
	}
	v := reflect.ValueOf(fn)
	if fn == nil || v.Kind() != reflect.Func || v.IsNil() {
		panic("gopdm.AddMethod: fn must be a non-nil func")
	}
	t := v.Type()
	if t.IsVariadic() {
		panic("gopdm.AddMethod: variadic funcs are not supported")
	}
	m := &Method{keyword: keyword, owner: o, fn: v}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if i == 0 && in == contextType {
			m.withCtx = true
			continue
		}
		if in.Implements(handleType) {
			panic("gopdm.AddMethod: argument " + strconv.Itoa(i) + " of " + quote(keyword) + " is an object")
		}
		m.args = append(m.args, in)
	}
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			m.withErr = true
		} else {
			m.result = t.Out(0)
		}
	case 2:
		if t.Out(1) != errorType {
			panic("gopdm.AddMethod: second result of " + quote(keyword) + " must be error")
		}
		m.result = t.Out(0)
		m.withErr = true
	default:
		panic("gopdm.AddMethod: " + quote(keyword) + " returns too many results")
	}
	if len(argNames) > 0 && len(argNames) != len(m.args) {
		panic("gopdm.AddMethod: " + quote(keyword) + " takes " + strconv.Itoa(len(m.args)) +
			" arguments but " + strconv.Itoa(len(argNames)) + " names were given")
	}
	m.argNames = make([]string, len(m.args))
	for i := range m.args {
		if i < len(argNames) {
			m.argNames[i] = argNames[i]
		} else {
			m.argNames[i] = "arg" + strconv.Itoa(i)
		}
	}
	o.methods = append(o.methods, m)
	return m
}

// Const marks the method as leaving the object unchanged. Observing remote
// sessions may only call const methods.
func (m *Method) Const() *Method {
	m.isConst = true
	return m
}

// WithDoc attaches documentation.
func (m *Method) WithDoc(doc string) *Method {
	m.AddCapability(&Documentation{Text: doc}, true)
	return m
}

func (m *Method) Keyword() string { return m.keyword }
func (m *Method) Owner() *Object  { return m.owner }
func (m *Method) IsConst() bool   { return m.isConst }

// ArgumentNames returns the argument names in order.
func (m *Method) ArgumentNames() []string { return append([]string(nil), m.argNames...) }

// ArgumentTypes returns the portable type names of the arguments.
func (m *Method) ArgumentTypes() []string {
	out := make([]string, len(m.args))
	for i, a := range m.args {
		out[i] = PortableTypeName(a)
	}
	return out
}

// ReturnType returns the portable type name of the result, "void" if none.
func (m *Method) ReturnType() string { return PortableTypeName(m.result) }

func (m *Method) Capabilities() []Capability { return m.caps.list() }

func (m *Method) AddCapability(c Capability, takeOwnership bool) {
	m.caps.add(m, c, takeOwnership)
}

func (m *Method) Documentation() string {
	if d, ok := CapabilityOf[*Documentation](m); ok {
		return d.Text
	}
	return ""
}

type positionalArgs struct {
	PositionalArguments []json.RawMessage `json:"positionalArguments"`
}

type methodResult struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Execute calls the method with arguments encoded as a JSON array, or as an
// object holding the array under "positionalArguments". The result is
// {"type":<portable type>,"value":<encoded result>}.
func (m *Method) Execute(ctx context.Context, args string) (string, error) {
	raws, err := m.splitArgs([]byte(args))
	if err != nil {
		return "", err
	}
	if len(raws) != len(m.args) {
		return "", Issues{{
			Path:     "/",
			Code:     CodeArgumentCount,
			Message:  "Wrong number of arguments! Got " + strconv.Itoa(len(raws)) + ", Expected " + strconv.Itoa(len(m.args)),
			Severity: Error,
			Params:   map[string]any{"got": len(raws), "expected": len(m.args)},
		}}
	}
	in := make([]reflect.Value, 0, len(m.args)+1)
	if m.withCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	p := RootPath()
	for i, t := range m.args {
		pv := reflect.New(t)
		if err := json.Unmarshal(raws[i], pv.Interface()); err != nil {
			return "", Issues{{
				Path:     p.Index(i).Pointer(),
				Code:     CodeArgumentType,
				Message:  "argument " + quote(m.argNames[i]) + " is not a valid " + PortableTypeName(t),
				Severity: Error,
				Cause:    err,
			}}
		}
		in = append(in, pv.Elem())
	}
	out := m.fn.Call(in)
	if m.withErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return "", wrapErr(p, CodeValidation, e.Interface().(error))
		}
	}
	res := methodResult{Type: m.ReturnType(), Value: jsonNull}
	if m.result != nil {
		raw, err := m.encodeResult(out[0])
		if err != nil {
			return "", wrapErr(p, CodeInvalidType, err)
		}
		res.Value = raw
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", wrapErr(p, CodeInvalidType, err)
	}
	return string(b), nil
}

func (m *Method) splitArgs(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var raws []json.RawMessage
	var err error
	if trimmed[0] == '{' {
		var pa positionalArgs
		err = json.Unmarshal(trimmed, &pa)
		raws = pa.PositionalArguments
	} else {
		err = json.Unmarshal(trimmed, &raws)
	}
	if err != nil {
		return nil, newIssues("/", CodeParseError, "arguments must be a JSON array", err)
	}
	return raws, nil
}

// encodeResult writes objects as full records and everything else with go-json.
func (m *Method) encodeResult(v reflect.Value) ([]byte, error) {
	if h, ok := v.Interface().(Handle); ok {
		if isNilHandle(h) {
			return jsonNull, nil
		}
		ws := &WriteState{s: &Serializer{}, path: RootPath()}
		return ws.writeRecord(h.AsObject())
	}
	return json.Marshal(v.Interface())
}

// Schema describes the call signature without invoking the method.
func (m *Method) Schema() *js.Schema {
	n := len(m.args)
	args := &js.Schema{Type: "array", MinItems: js.Ptr(n), MaxItems: js.Ptr(n)}
	for i, t := range m.args {
		a := SchemaForType(t)
		a.Title = m.argNames[i]
		args.PrefixItems = append(args.PrefixItems, a)
	}
	s := &js.Schema{Type: "object", Description: m.Documentation()}
	s.Properties.Set("arguments", args)
	if m.result != nil {
		s.Properties.Set("returns", SchemaForType(m.result))
	}
	if m.isConst {
		s.ReadOnly = true
	}
	return s
}
