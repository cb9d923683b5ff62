package codec

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/gopdm"
	js "github.com/reoring/gopdm/jsonschema"
)

// TimeRFC3339 returns a ValueCodec that writes time.Time as a canonical
// RFC3339 string in UTC and reads any RFC3339 or RFC3339Nano string.
func TimeRFC3339() gopdm.ValueCodec[time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) EncodeValue(t time.Time) ([]byte, error) {
	return json.Marshal(formatRFC3339Canonical(t))
}

func (rfc3339Codec) DecodeValue(data []byte) (time.Time, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, gopdm.Issues{{Path: "/", Code: gopdm.CodeInvalidType, Message: "expected an RFC3339 string", Severity: gopdm.Error, Cause: err}}
	}
	t, err := parseRFC3339(s)
	if err != nil {
		return time.Time{}, gopdm.Issues{{Path: "/", Code: gopdm.CodeInvalidType, Message: "invalid RFC3339 time", Severity: gopdm.Error, Cause: err}}
	}
	return t, nil
}

func (rfc3339Codec) ValueSchema() *js.Schema {
	return &js.Schema{Type: "string", Format: "date-time"}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
