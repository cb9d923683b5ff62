// Package store persists object graphs keyed by the UUID of their root.
// Graphs are written and read through a gopdm.Serializer, so lifecycle hooks
// run exactly as they do for files.
package store

import (
	"context"

	"github.com/reoring/gopdm"
)

// Entry describes a stored graph.
type Entry struct {
	UUID  string
	Class string
}

// Store saves, loads and deletes graphs.
type Store interface {
	Save(ctx context.Context, root gopdm.Handle) error
	Load(ctx context.Context, id string) (gopdm.Handle, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

func notFound(id string) gopdm.Issues {
	return gopdm.Issues{{
		Path:     "/",
		Code:     gopdm.CodeNotFound,
		Message:  "no stored object " + id,
		Severity: gopdm.Error,
		Cause:    gopdm.ErrNotFound,
		Params:   map[string]any{"uuid": id},
	}}
}

func ioFailure(op string, err error) gopdm.Issues {
	return gopdm.Issues{{
		Path:     "/",
		Code:     gopdm.CodeIOError,
		Message:  op + ": " + err.Error(),
		Severity: gopdm.Error,
		Cause:    err,
	}}
}
