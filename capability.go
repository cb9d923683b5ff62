package gopdm

// Capability is a facet attached to a field or an object. Attach is called
// once, when the capability is added, with the field or object it belongs to.
type Capability interface {
	Attach(owner Capable)
}

// Capable is implemented by everything capabilities attach to.
type Capable interface {
	Capabilities() []Capability
	AddCapability(c Capability, takeOwnership bool)
}

// Releaser is implemented by capabilities holding resources. Owned
// capabilities are released when their field or object is destroyed.
type Releaser interface {
	Release()
}

// CapabilityOf returns the first capability attached to x whose dynamic type
// matches C. Absence is not an error.
func CapabilityOf[C any](x Capable) (C, bool) {
	var zero C
	if x == nil {
		return zero, false
	}
	for _, c := range x.Capabilities() {
		if m, ok := c.(C); ok {
			return m, true
		}
	}
	return zero, false
}

type capEntry struct {
	c     Capability
	owned bool
}

type capabilitySet struct {
	entries []capEntry
}

func (s *capabilitySet) add(owner Capable, c Capability, owned bool) {
	if c == nil {
		panic("gopdm.AddCapability: capability must not be nil")
	}
	s.entries = append(s.entries, capEntry{c: c, owned: owned})
	c.Attach(owner)
}

func (s *capabilitySet) list() []Capability {
	out := make([]Capability, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.c
	}
	return out
}

func (s *capabilitySet) release() {
	for _, e := range s.entries {
		if !e.owned {
			continue
		}
		if r, ok := e.c.(Releaser); ok {
			r.Release()
		}
	}
	s.entries = nil
}

// Documentation carries the human-readable description of a field, method or
// object for schema output and code generators.
type Documentation struct {
	Text  string
	owner Capable
}

func (d *Documentation) Attach(owner Capable) { d.owner = owner }

// Owner returns the field or object the documentation is attached to.
func (d *Documentation) Owner() Capable { return d.owner }

// Scripting exposes a field to remote callers. Readable and Writable gate
// remote get and set independently of the field's local accessors.
type Scripting struct {
	Readable bool
	Writable bool
	owner    Capable
}

func (s *Scripting) Attach(owner Capable) { s.owner = owner }

// Owner returns the field the capability is attached to.
func (s *Scripting) Owner() Capable { return s.owner }

// Deprecation marks a field kept only so old records still load: it is read
// but no longer written or described by schemas.
type Deprecation struct{}

func (*Deprecation) Attach(Capable) {}

// IsDeprecated reports whether f carries a Deprecation.
func IsDeprecated(f FieldHandle) bool {
	_, ok := CapabilityOf[*Deprecation](f)
	return ok
}

// RemoteReadable reports whether remote callers may read the field.
func RemoteReadable(f FieldHandle) bool {
	sc, ok := CapabilityOf[*Scripting](f)
	return ok && sc.Readable && f.IsReadable()
}

// RemoteWritable reports whether remote callers may write the field.
func RemoteWritable(f FieldHandle) bool {
	sc, ok := CapabilityOf[*Scripting](f)
	return ok && sc.Writable && f.IsWritable()
}
