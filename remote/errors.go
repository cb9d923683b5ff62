package remote

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/gopdm"
)

// wireIssue is the JSON form of a gopdm.Issue.
type wireIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

type errorBody struct {
	Issues []wireIssue `json:"issues"`
}

var (
	errNoSession   = errors.New("missing or expired session")
	errObserving   = errors.New("observing sessions cannot modify objects")
	errNotReadable = errors.New("field is not remotely readable")
	errNotWritable = errors.New("field is not remotely writable")
)

func statusFor(code string) int {
	switch code {
	case gopdm.CodeNotFound, gopdm.CodeUnknownClass:
		return http.StatusNotFound
	case gopdm.CodeNotExposed:
		return http.StatusForbidden
	case gopdm.CodeParseError, gopdm.CodeInvalidType, gopdm.CodeArgumentCount,
		gopdm.CodeArgumentType, gopdm.CodeDuplicateKey, gopdm.CodeClassMissing,
		gopdm.CodeClassMismatch, gopdm.CodeInvalidKeyword:
		return http.StatusBadRequest
	case gopdm.CodeTruncated:
		return http.StatusRequestEntityTooLarge
	case gopdm.CodeValidation:
		return http.StatusUnprocessableEntity
	case gopdm.CodeUnsupported:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

func issue(code, path string, err error) gopdm.Issues {
	it := gopdm.Issue{Path: path, Code: code, Message: err.Error(), Severity: gopdm.Error, Cause: err}
	if code == gopdm.CodeNotFound {
		it.Cause = gopdm.ErrNotFound
	}
	return gopdm.Issues{it}
}

func notFound(what string) gopdm.Issues {
	return issue(gopdm.CodeNotFound, "/", errors.New(what+" not found"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	iss, ok := gopdm.AsIssues(err)
	if !ok {
		iss = issue("internal", "/", err)
	}
	status := statusFor(iss[0].Code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	body := errorBody{Issues: make([]wireIssue, len(iss))}
	for i, it := range iss {
		body.Issues[i] = wireIssue{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint}
	}
	writeJSON(w, status, body)
}

// decodeError turns an error response back into Issues.
func decodeError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Issues) == 0 {
		return issue(gopdm.CodeIOError, "/", errors.New("remote: unexpected status "+http.StatusText(status)))
	}
	out := make(gopdm.Issues, len(body.Issues))
	for i, wi := range body.Issues {
		out[i] = gopdm.Issue{Path: wi.Path, Code: wi.Code, Message: wi.Message, Hint: wi.Hint, Severity: gopdm.Error}
		if wi.Code == gopdm.CodeNotFound || wi.Code == gopdm.CodeUnknownClass {
			out[i].Cause = gopdm.ErrNotFound
		}
	}
	return out
}
