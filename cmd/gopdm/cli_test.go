package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

const classesYAML = `
classes:
  - keyword: Shape
    doc: A polygon
    fields:
      - keyword: name
        type: string
      - keyword: sides
        type: int32
        default: 3
        min: 3
  - keyword: Drawing
    fields:
      - keyword: title
        type: string
      - keyword: background
        child: Shape
`

const (
	shapeID   = "c0ffee00-0000-4000-8000-000000000001"
	shapeJSON = `{"Class":"Shape","UUID":"` + shapeID + `","name":"Tri","sides":3}`
)

type fixture struct {
	dir     string
	classes string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{dir: dir, classes: filepath.Join(dir, "classes.yaml")}
	require.NoError(t, os.WriteFile(f.classes, []byte(classesYAML), 0o644))
	return f
}

func (f *fixture) file(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// run executes the CLI in-process and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gopdm version:")
	assert.Contains(t, out, "Git commit:")
}

func TestClassesCommand(t *testing.T) {
	f := newFixture(t)
	out, _, err := run(t, "classes", "--classes", f.classes, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Document : Object")
	assert.Contains(t, out, "Shape : Object  A polygon")
	assert.Contains(t, out, "Drawing")
}

func TestClassesCommand_BadDefinitions(t *testing.T) {
	f := newFixture(t)
	bad := f.file(t, "bad.yaml", "classes:\n  - keyword: Shape\n    bogus: true\n")
	_, _, err := run(t, "classes", "--classes", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load classes")
}

func TestSchemaCommand(t *testing.T) {
	f := newFixture(t)
	out, _, err := run(t, "schema", "Shape", "--classes", f.classes)
	require.NoError(t, err)
	assert.Contains(t, out, `"/schemas/Shape"`)
	assert.Contains(t, out, `"sides"`)

	_, _, err = run(t, "schema", "Circle", "--classes", f.classes)
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestValidateCommand(t *testing.T) {
	f := newFixture(t)
	good := f.file(t, "good.json", shapeJSON)
	tooFew := f.file(t, "few.json", `{"Class":"Shape","sides":1}`)
	unknown := f.file(t, "unknown.json", `{"Class":"Circle"}`)

	out, _, err := run(t, "validate", good, "--classes", f.classes, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+good+" (Shape "+shapeID+")")

	_, errOut, err := run(t, "validate", good, tooFew, unknown, "--classes", f.classes, "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed validation")
	assert.Contains(t, errOut, "✗ "+tooFew)
	assert.Contains(t, errOut, "at /sides")
	assert.Contains(t, errOut, gopdm.CodeUnknownClass)
}

func TestValidateCommand_Limits(t *testing.T) {
	f := newFixture(t)
	doc := f.file(t, "big.json", shapeJSON)
	_, errOut, err := run(t, "validate", doc, "--classes", f.classes, "--max-bytes", "10", "--no-color")
	require.Error(t, err)
	assert.Contains(t, errOut, gopdm.CodeTruncated)
}

func TestConvertCommand(t *testing.T) {
	f := newFixture(t)
	drawing := f.file(t, "drawing.json",
		`{"Class":"Drawing","UUID":"d1","title":"Sketch","background":`+shapeJSON+`}`)

	out, _, err := run(t, "convert", drawing, "--classes", f.classes, "--no-uuids", "--indent", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Class":"Drawing","title":"Sketch","background":{"Class":"Shape","name":"Tri","sides":3}}`, out)

	out, _, err = run(t, "convert", drawing, "--classes", f.classes, "--skeleton", "--indent", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Class":"Drawing","UUID":"d1","title":"Sketch","background":{"Class":"Shape","UUID":"`+shapeID+`"}}`, out)

	out, _, err = run(t, "convert", drawing, "--classes", f.classes, "--yaml", "--no-uuids")
	require.NoError(t, err)
	assert.Contains(t, out, "Class: Drawing\n")
	assert.Contains(t, out, "title: Sketch\n")
	assert.Contains(t, out, "  name: Tri\n")

	target := filepath.Join(f.dir, "out.json")
	_, _, err = run(t, "convert", drawing, "--classes", f.classes, "-o", target, "--no-color")
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"title\": \"Sketch\"")
}

func TestStoreCommands_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	f := newFixture(t)
	doc := f.file(t, "shape.json", shapeJSON)
	common := []string{"--classes", f.classes, "--store", "redis", "--redis-addr", mr.Addr(), "--no-color"}

	out, _, err := run(t, append([]string{"save", doc}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "stored as "+shapeID)

	out, _, err = run(t, append([]string{"list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, shapeID+"\tShape")

	out, _, err = run(t, append([]string{"load", shapeID}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Tri"`)

	target := filepath.Join(f.dir, "loaded.json")
	_, _, err = run(t, append([]string{"load", shapeID, "-o", target}, common...)...)
	require.NoError(t, err)
	assert.FileExists(t, target)

	_, _, err = run(t, append([]string{"delete", shapeID}, common...)...)
	require.NoError(t, err)

	_, _, err = run(t, append([]string{"load", shapeID}, common...)...)
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestConfig_FileAndValidation(t *testing.T) {
	f := newFixture(t)
	cfgPath := f.file(t, "gopdm.yaml", "classes:\n  - "+f.classes+"\nno_color: true\n")

	out, _, err := run(t, "classes", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Shape")

	_, _, err = run(t, "list", "--config", cfgPath, "--store", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.kind must be sql or redis")

	_, _, err = run(t, "classes", "--config", filepath.Join(f.dir, "missing.yaml"))
	require.Error(t, err)
}
