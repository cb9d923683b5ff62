package gopdm

import (
	"io"
	"os"

	"go.uber.org/zap"
)

// WriteStream writes h to w.
func (s *Serializer) WriteStream(w io.Writer, h Handle) error {
	b, err := s.writeBytes(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return ioIssue("write", "", err)
	}
	return nil
}

// ReadStream reads the whole of r into h.
func (s *Serializer) ReadStream(r io.Reader, h Handle) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return ioIssue("read", "", err)
	}
	return s.ReadObjectFromString(h, string(b))
}

// WriteFile writes h to path. Failures are logged and returned.
func (s *Serializer) WriteFile(path string, h Handle) error {
	f, err := os.Create(path)
	if err != nil {
		s.log().Error("cannot open file for writing", zap.String("path", path), zap.Error(err))
		return ioIssue("write", path, err)
	}
	werr := s.WriteStream(f, h)
	cerr := f.Close()
	if werr != nil {
		s.log().Error("cannot write file", zap.String("path", path), zap.Error(werr))
		return werr
	}
	if cerr != nil {
		s.log().Error("cannot close file", zap.String("path", path), zap.Error(cerr))
		return ioIssue("write", path, cerr)
	}
	return nil
}

// ReadFile populates h from the file at path. Failures are logged and returned.
func (s *Serializer) ReadFile(path string, h Handle) error {
	b, err := os.ReadFile(path)
	if err != nil {
		s.log().Error("cannot read file", zap.String("path", path), zap.Error(err))
		return ioIssue("read", path, err)
	}
	if err := s.ReadObjectFromString(h, string(b)); err != nil {
		s.log().Error("cannot parse file", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// CreateObjectFromFile builds a new object from the file at path.
func (s *Serializer) CreateObjectFromFile(path string) (Handle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		s.log().Error("cannot read file", zap.String("path", path), zap.Error(err))
		return nil, ioIssue("read", path, err)
	}
	return s.CreateObjectFromString(string(b))
}

func ioIssue(op, path string, err error) Issues {
	return Issues{{
		Path:     "/",
		Code:     CodeIOError,
		Message:  op + " failed: " + err.Error(),
		Severity: Error,
		Hint:     path,
		Cause:    err,
	}}
}
