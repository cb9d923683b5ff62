package gopdm

// Severity expresses the severity level for issues and validators.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Ignore:
		return "ignore"
	case Warn:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// Strictness configures enforcement for duplicate keys while reading.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn or Error (duplicate JSON keys).
}

// SerializationType selects what the Serializer writes.
type SerializationType int

const (
	DataFull     SerializationType = iota // Values of every serializable field, recursively.
	DataSkeleton                          // Root values; nested records carry only Class and UUID.
	Schema                                // A JSON schema describing the object's class.
)

func (t SerializationType) String() string {
	switch t {
	case DataFull:
		return "DATA_FULL"
	case DataSkeleton:
		return "DATA_SKELETON"
	case Schema:
		return "SCHEMA"
	}
	return "UNKNOWN"
}

// FieldSelector decides whether a field takes part in serialization.
type FieldSelector func(FieldHandle) bool

// SerializeOpt bundles serializer options. The zero value writes full data
// with UUIDs, rejects duplicate keys on read and imposes no size limits.
type SerializeOpt struct {
	Type          SerializationType
	SuppressUUIDs bool
	FieldSelector FieldSelector
	MaxDepth      int
	MaxBytes      int64
	Strictness    *Strictness // nil means duplicate keys are errors.
	Indent        string      // Non-empty pretty-prints the output.
}
