package gopdm_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

var projectClass = gopdm.DefineClass("Project", gopdm.DocumentClass)

type project struct {
	gopdm.Document
	Items *gopdm.ChildArrayField[itemLike]
}

func newProject() *project {
	p := &project{}
	p.InitDocument(p, projectClass)
	p.Items = gopdm.AddField(p, "items", gopdm.NewChildArrayField[itemLike](itemClass))
	return p
}

func TestDocument_SaveLoad(t *testing.T) {
	f := newTestFactory()
	gopdm.RegisterCreator(f, projectClass, newProject)
	s := gopdm.NewSerializer(f)

	p := newProject()
	require.NoError(t, p.ID.SetValue("doc-1"))
	p.Items.PushBack(namedItem("first"))
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, p.FileName.SetValue(path))
	require.NoError(t, p.Save(s))

	q := newProject()
	require.NoError(t, q.FileName.SetValue(path))
	require.NoError(t, q.Load(s))
	assert.Equal(t, "doc-1", q.ID.Value())
	require.Equal(t, 1, q.Items.Size())
	assert.Equal(t, "first", q.Items.At(0).asItem().Name.Value())

	text, err := s.WriteObjectToString(p)
	require.NoError(t, err)
	assert.NotContains(t, text, "fileName")
	assert.True(t, p.Is("Document"))
}

func TestDocument_RequiresFileName(t *testing.T) {
	s := gopdm.NewSerializer(gopdm.NewFactory())
	d := gopdm.NewDocument()
	requireCode(t, d.Save(s), gopdm.CodeIOError)
	requireCode(t, d.Load(s), gopdm.CodeIOError)
}
