package classdef

import (
	"fmt"

	"github.com/reoring/gopdm"
)

// Issues reported by this package point into the definition set, e.g.
// /classes/Shape/fields/sides.

func classPath(kw string) gopdm.PathRef {
	return gopdm.RootPath().Field("classes").Field(kw)
}

func fail(p gopdm.PathRef, code, format string, args ...any) gopdm.Issues {
	return gopdm.Issues{gopdm.IssueAt(p, code, fmt.Sprintf(format, args...), nil)}
}

func failCause(p gopdm.PathRef, code string, cause error, format string, args ...any) gopdm.Issues {
	it := gopdm.IssueAt(p, code, fmt.Sprintf(format, args...), nil)
	it.Cause = cause
	return gopdm.Issues{it}
}

// invalid builds a field-level issue; addFields places it.
func invalid(code, format string, args ...any) gopdm.Issues {
	return fail(gopdm.RootPath(), code, format, args...)
}

// relocate moves field-level issues, built without a location, under p.
func relocate(p gopdm.PathRef, err error) error {
	iss, ok := gopdm.AsIssues(err)
	if !ok {
		return failCause(p, gopdm.CodeInvalidType, err, "%v", err)
	}
	out := make(gopdm.Issues, len(iss))
	for i, it := range iss {
		it.Path = p.Pointer()
		out[i] = it
	}
	return out
}
