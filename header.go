package gopdm

import (
	"errors"
	"slices"

	eng "github.com/reoring/gopdm/internal/engine"
)

// Header is the identity part of a record.
type Header struct {
	Class string
	UUID  string
}

// ReadHeader extracts the Class and UUID of a record without decoding its
// fields. A missing UUID is not an error.
func ReadHeader(text string) (Header, error) {
	return readHeader([]byte(text))
}

func readHeader(data []byte) (Header, error) {
	found, wrong, err := eng.ScanHeader(eng.NewBytes(data), ClassKey, UUIDKey)
	if err != nil {
		if errors.Is(err, eng.ErrNotObject) {
			return Header{}, newIssues("/", CodeParseError, "expected a JSON object", err)
		}
		return Header{}, newIssues("/", CodeParseError, "", err)
	}
	if slices.Contains(wrong, ClassKey) {
		return Header{}, newIssues("/"+ClassKey, CodeInvalidType, ClassKey+" must be a string", nil)
	}
	class, ok := found[ClassKey]
	if !ok {
		return Header{}, newIssues("/", CodeClassMissing, "record has no "+ClassKey+" tag", nil)
	}
	return Header{Class: class, UUID: found[UUIDKey]}, nil
}
