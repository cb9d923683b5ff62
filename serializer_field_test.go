package gopdm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

func TestSerializer_WriteFieldValue(t *testing.T) {
	s := gopdm.NewSerializer(newTestFactory())
	c := sampleContainer()

	raw, err := s.WriteFieldValue(c.Title)
	require.NoError(t, err)
	assert.JSONEq(t, `"untitled"`, string(raw))

	raw, err = s.WriteFieldValue(c.Main)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	it := namedItem("solo")
	c.Main.SetObject(it)
	raw, err = s.WithUUIDs(false).WriteFieldValue(c.Main)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Class":"Item","name":"solo","value":0}`, string(raw))
}

func TestSerializer_ReadFieldValue(t *testing.T) {
	s := gopdm.NewSerializer(newTestFactory())
	c := newContainer()

	require.NoError(t, s.ReadFieldValue(c.Title, []byte(` "renamed" `)))
	assert.Equal(t, "renamed", c.Title.Value())

	require.NoError(t, s.ReadFieldValue(c.Title, []byte(`null`)))
	assert.Equal(t, "", c.Title.Value())

	c.Main.SetObject(namedItem("gone"))
	require.NoError(t, s.ReadFieldValue(c.Main, []byte(`null`)))
	assert.True(t, c.Main.Empty())

	iss := requireCode(t, s.ReadFieldValue(c.Title, []byte(`42`)), gopdm.CodeInvalidType)
	assert.Equal(t, "/title", iss[0].Path)

	requireCode(t, s.WithType(gopdm.Schema).ReadFieldValue(c.Title, []byte(`"x"`)), gopdm.CodeUnsupported)
}

func TestSerializer_FieldValueRequiresIO(t *testing.T) {
	s := gopdm.NewSerializer(newTestFactory())
	owner := newItem()
	hidden := gopdm.AddField(owner, "hidden", gopdm.NewField("").WithoutIO())

	_, err := s.WriteFieldValue(hidden)
	requireCode(t, err, gopdm.CodeUnsupported)
	requireCode(t, s.ReadFieldValue(hidden, []byte(`"x"`)), gopdm.CodeUnsupported)
}

func TestSerializer_AnyFieldKeepsNumbersExact(t *testing.T) {
	s := gopdm.NewSerializer(newTestFactory())
	it := newItem()
	extra := gopdm.AddField(it, "extra", gopdm.NewField[any](nil))

	in := `{"big":12345678901234567890,"list":[1,2.50,null,"s"]}`
	require.NoError(t, s.ReadFieldValue(extra, []byte(in)))
	m, ok := extra.Value().(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, "12345678901234567890", m["big"])

	raw, err := s.WriteFieldValue(extra)
	require.NoError(t, err)
	assert.Equal(t, in, string(raw))

	requireCode(t, s.ReadFieldValue(extra, []byte(`{"a":`)), gopdm.CodeParseError)
}
