package gopdm

import (
	json "github.com/goccy/go-json"

	js "github.com/reoring/gopdm/jsonschema"
)

// writeSchema describes o's class. Fields and methods already declared by
// the nearest registered ancestor are left to that ancestor's schema, which
// is referenced through allOf.
func (ws *WriteState) writeSchema(o *Object) ([]byte, error) {
	s := ws.s
	parentFields := map[string]bool{}
	parentMethods := map[string]bool{}
	parentKeyword := ""
	for _, kw := range o.class.stack[1:] {
		p, ok := s.factory.Create(kw)
		if !ok {
			continue
		}
		po := p.AsObject()
		for _, f := range po.fields {
			parentFields[f.Keyword()] = true
		}
		for _, m := range po.methods {
			parentMethods[m.keyword] = true
		}
		parentKeyword = kw
		po.Destroy()
		break
	}

	class := &js.Schema{Type: "object", Description: o.Documentation()}
	class.Properties.Set(ClassKey, &js.Schema{Type: "string"})
	class.Properties.Set(UUIDKey, &js.Schema{Type: "string"})

	for _, f := range o.fields {
		kw := f.Keyword()
		if parentFields[kw] || !s.selected(f) || IsDeprecated(f) || !(f.IsReadable() || f.IsWritable()) {
			continue
		}
		fio, ok := CapabilityOf[FieldIO](f)
		if !ok {
			continue
		}
		fs := ws.enter(kw)
		if !IsValidKeyword(kw) || isReservedKeyword(kw) {
			return nil, Issues{fs.path.Issue(CodeInvalidKeyword, "cannot write invalid field keyword "+quote(kw))}
		}
		vs, err := fio.ValueSchema(fs)
		if err != nil {
			return nil, wrapErr(fs.path, CodeInvalidType, err)
		}
		class.Properties.Set(kw, vs)
	}

	methods := &js.Schema{Type: "object"}
	for _, m := range o.methods {
		if parentMethods[m.keyword] {
			continue
		}
		methods.Properties.Set(m.keyword, m.Schema())
	}
	if len(methods.Properties) > 0 {
		class.Properties.Set("methods", methods)
	}

	class.Required = []string{ClassKey}
	if s.SerializeUUIDs() {
		class.Required = append(class.Required, UUIDKey)
	}

	out := class
	if parentKeyword != "" {
		out = &js.Schema{AllOf: []*js.Schema{{Ref: ObjectSchemaRef(parentKeyword)}, class}}
	}
	out.SchemaURI = js.Draft
	out.ID = ObjectSchemaRef(o.ClassKeyword())
	return json.Marshal(out)
}
