package engine

import (
	"errors"
	"io"
	"slices"
)

// ErrNotObject is returned by ScanHeader when the document is not a JSON object.
var ErrNotObject = errors.New("engine: document is not an object")

// ScanHeader reads the top-level members named by keys without decoding the
// rest of the document. Only string values are reported; members holding
// another kind are returned in wrongType. Scanning stops as soon as every
// key was seen.
func ScanHeader(src TokenSource, keys ...string) (found map[string]string, wrongType []string, err error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, nil, err
	}
	if tok.Kind != KindBeginObject {
		return nil, nil, ErrNotObject
	}
	found = make(map[string]string, len(keys))
	remaining := len(keys)
	for remaining > 0 {
		kt, err := src.NextToken()
		if err != nil {
			return nil, nil, err
		}
		if kt.Kind == KindEndObject {
			break
		}
		if kt.Kind != KindKey {
			return nil, nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, nil, err
		}
		want := slices.Contains(keys, kt.String)
		if _, seen := found[kt.String]; want && !seen && !slices.Contains(wrongType, kt.String) {
			remaining--
			if vt.Kind == KindString {
				found[kt.String] = vt.String
			} else {
				wrongType = append(wrongType, kt.String)
			}
		}
		if vt.Kind == KindBeginObject || vt.Kind == KindBeginArray {
			if err := skipContainer(src); err != nil {
				return nil, nil, err
			}
		}
	}
	return found, wrongType, nil
}

// skipContainer consumes tokens up to the end of the container whose opening
// token was just read.
func skipContainer(src TokenSource) error {
	depth := 1
	for depth > 0 {
		tok, err := src.NextToken()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch tok.Kind {
		case KindBeginObject, KindBeginArray:
			depth++
		case KindEndObject, KindEndArray:
			depth--
		}
	}
	return nil
}
