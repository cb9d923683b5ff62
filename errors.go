package gopdm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/gopdm/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidKeyword = "invalid_keyword"
	CodeClassMissing   = "class_missing"
	CodeClassMismatch  = "class_mismatch"
	CodeUnknownClass   = "unknown_class"
	CodeParseError     = "parse_error"
	CodeInvalidType    = "invalid_type"
	CodeDuplicateKey   = "duplicate_key"
	CodeTruncated      = "truncated"
	CodeValidation     = "validation"
	CodeArgumentCount  = "argument_count"
	CodeArgumentType   = "argument_type"
	CodeIOError        = "io_error"
	CodeNotFound       = "not_found"
	CodeNotExposed     = "not_exposed"
	CodeUnsupported    = "unsupported"
)

var (
	// ErrNotFound reports a lookup miss surfaced as an error (remote and store layers).
	ErrNotFound = errors.New("gopdm: not found")
	// ErrSchemaModeRead is returned when reading with a Schema-mode serializer.
	ErrSchemaModeRead = errors.New("gopdm: reading objects only makes sense for data")
)

// Issue represents a single failure entry.
type Issue struct {
	Path     string   // JSON Pointer (for example: /items/2/name).
	Code     string   // One of the codes listed above.
	Message  string
	Severity Severity // Issues built by this package use Error unless noted.
	Hint     string   // Optional: remediation hints, class names, etc.
	Cause    error    // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
	// Rule optionally records the validator name that produced this issue.
	Rule string
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. validation at /value: The value 12 is outside the limits [0, 10]
		fmt.Fprintf(b, "%s at %s", it.Code, normalizePath(it.Path))
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is can match sentinels and I/O errors.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// MaxSeverity returns the highest severity in the collection.
func (iss Issues) MaxSeverity() Severity {
	max := Ignore
	for _, it := range iss {
		if it.Severity > max {
			max = it.Severity
		}
	}
	return max
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given path with provided code, message and params map.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Severity: Error, Params: params}
}

// newIssues builds a single-entry Issues with a translated default message.
func newIssues(path, code, msg string, cause error) Issues {
	if msg == "" {
		msg = i18n.T(code, nil)
	}
	return Issues{{Path: normalizePath(path), Code: code, Message: msg, Severity: Error, Cause: cause}}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
