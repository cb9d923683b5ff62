package gopdm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/gopdm"
)

func TestField_ValidatorGatesSetValue(t *testing.T) {
	it := newItem()
	it.Name.WithValidator(maxLen(3))

	require.NoError(t, it.Name.SetValue("abc"))
	err := it.Name.SetValue("abcd")
	require.Error(t, err)
	iss, ok := gopdm.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(gopdm.CodeValidation))
	assert.Equal(t, "/name", iss[0].Path)
	assert.Equal(t, "maxLen", iss[0].Rule)
	assert.Equal(t, "abc", it.Name.Value(), "rejected values are not stored")
}

func TestField_WarningsAreLoggedAndStored(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gopdm.SetLogger(zap.New(core))
	defer gopdm.SetLogger(nil)

	it := newItem()
	it.Name.WithValidator(warnEmpty{})
	require.NoError(t, it.Name.SetValue("x"))
	require.NoError(t, it.Name.SetValue(""))
	assert.Equal(t, "", it.Name.Value())
	assert.Equal(t, 1, logs.FilterMessage("field validation warning").Len())
}

func TestField_ChangedSignal(t *testing.T) {
	it := newItem()
	var got []gopdm.FieldHandle
	it.Changed().Connect(nil, func(f gopdm.FieldHandle) { got = append(got, f) })

	require.NoError(t, it.Value.SetValue(2.5))
	require.NoError(t, it.Value.ResetToDefault())
	require.Len(t, got, 2)
	assert.Same(t, it.Value, got[0])
	assert.Equal(t, 0.0, it.Value.Value())
	assert.Equal(t, 0.0, it.Value.Default())
}

func TestField_ProxyAccessor(t *testing.T) {
	backing := 7
	it := newItem()
	ro := gopdm.AddField(it, "readOnly", gopdm.NewField(0).WithAccessor(&gopdm.ProxyAccessor[int]{
		Get: func() (int, error) { return backing, nil },
	}))
	assert.True(t, ro.IsReadable())
	assert.False(t, ro.IsWritable())
	assert.Equal(t, 7, ro.Value())
	err := ro.SetValue(1)
	iss, ok := gopdm.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(gopdm.CodeUnsupported))

	broken := errors.New("backend down")
	rw := gopdm.AddField(it, "proxied", gopdm.NewField(0).WithAccessor(&gopdm.ProxyAccessor[int]{
		Get: func() (int, error) { return 0, broken },
		Set: func(v int) error { backing = v; return nil },
	}))
	require.NoError(t, rw.SetValue(42))
	assert.Equal(t, 42, backing)
	_, err = rw.Get()
	assert.ErrorIs(t, err, broken)
}

func TestField_PortableTypes(t *testing.T) {
	n := newNumbers()
	c := newContainer()
	cases := []struct {
		f    gopdm.FieldHandle
		want string
	}{
		{n.D, "double"},
		{n.F, "float"},
		{n.I, "int32"},
		{n.U, "uint64"},
		{n.B, "bool"},
		{n.Tags, "string[]"},
		{c.Title, "string"},
		{c.Main, "Item"},
		{c.Items, "Item[]"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.f.PortableType(), tc.f.Keyword())
	}
}

func TestField_Capabilities(t *testing.T) {
	it := newItem()
	assert.Equal(t, "Display name", it.Name.Documentation())
	assert.False(t, gopdm.RemoteReadable(it.Name))

	it.Name.WithScripting(true, false)
	assert.True(t, gopdm.RemoteReadable(it.Name))
	assert.False(t, gopdm.RemoteWritable(it.Name))

	sc, ok := gopdm.CapabilityOf[*gopdm.Scripting](it.Name)
	require.True(t, ok)
	assert.Same(t, it.Name, sc.Owner())

	_, ok = gopdm.CapabilityOf[gopdm.FieldIO](it.Value)
	assert.True(t, ok)
	it.Value.WithoutIO()
	_, ok = gopdm.CapabilityOf[gopdm.FieldIO](it.Value)
	assert.False(t, ok)
}
