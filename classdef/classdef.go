// Package classdef loads class definitions from YAML or TOML and registers
// them with a gopdm.Factory. Objects of such classes are *Dynamic values
// whose fields are built at runtime from the definition.
package classdef

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/reoring/gopdm"
)

// Set is the content of a definition file.
type Set struct {
	Classes []ClassDef `yaml:"classes" toml:"classes"`
}

// ClassDef declares one class.
type ClassDef struct {
	Keyword string     `yaml:"keyword" toml:"keyword"`
	Parent  string     `yaml:"parent,omitempty" toml:"parent"`
	Doc     string     `yaml:"doc,omitempty" toml:"doc"`
	Fields  []FieldDef `yaml:"fields,omitempty" toml:"fields"`
}

// FieldDef declares one field. Exactly one of Type, Child or Children is set:
// Type names a portable value type (double, int32, string[], timestamp, ...),
// Child and Children name the class of owned objects.
type FieldDef struct {
	Keyword    string   `yaml:"keyword" toml:"keyword"`
	Type       string   `yaml:"type,omitempty" toml:"type"`
	Child      string   `yaml:"child,omitempty" toml:"child"`
	Children   string   `yaml:"children,omitempty" toml:"children"`
	Default    any      `yaml:"default,omitempty" toml:"default"`
	Doc        string   `yaml:"doc,omitempty" toml:"doc"`
	Min        *float64 `yaml:"min,omitempty" toml:"min"`
	Max        *float64 `yaml:"max,omitempty" toml:"max"`
	Enum       []string `yaml:"enum,omitempty" toml:"enum"`
	Pattern    string   `yaml:"pattern,omitempty" toml:"pattern"`
	Scripting  string   `yaml:"scripting,omitempty" toml:"scripting"` // "r", "w" or "rw"
	// Deprecated fields are still read from old records but no longer written.
	Deprecated bool     `yaml:"deprecated,omitempty" toml:"deprecated"`
}

// LoadYAML reads one or more YAML documents and merges their classes.
func LoadYAML(r io.Reader) (*Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	out := &Set{}
	for {
		var doc Set
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, failCause(gopdm.RootPath(), gopdm.CodeParseError, err, "decode yaml: %v", err)
		}
		out.Classes = append(out.Classes, doc.Classes...)
	}
	return out, nil
}

// LoadTOML reads a TOML document. Undecoded keys are rejected.
func LoadTOML(r io.Reader) (*Set, error) {
	var out Set
	meta, err := toml.NewDecoder(r).Decode(&out)
	if err != nil {
		return nil, failCause(gopdm.RootPath(), gopdm.CodeParseError, err, "decode toml: %v", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fail(gopdm.RootPath().Field(undecoded[0].String()), gopdm.CodeParseError, "unknown toml key %q", undecoded[0].String())
	}
	return &out, nil
}

// LoadFile picks the decoder from the file extension (.yaml, .yml or .toml).
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failCause(gopdm.RootPath(), gopdm.CodeIOError, err, "read %s: %v", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	case ".toml":
		return LoadTOML(bytes.NewReader(data))
	}
	return nil, fail(gopdm.RootPath(), gopdm.CodeUnsupported, "unsupported file type %q", filepath.Ext(path))
}

// Marshal renders the set as YAML.
func (s *Set) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
