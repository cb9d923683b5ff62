package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
	js "github.com/reoring/gopdm/jsonschema"
	"github.com/reoring/gopdm/rules"
)

func TestRange(t *testing.T) {
	r := rules.Range(0.0, 10.0)
	assert.NoError(t, r.Validate(0))
	assert.NoError(t, r.Validate(10))
	err := r.Validate(12)
	require.Error(t, err)
	assert.Equal(t, "The value 12 is outside the limits [0, 10]", err.Error())
	assert.Equal(t, gopdm.Error, r.Severity())
	assert.Equal(t, "range", r.Name())

	s := &js.Schema{}
	r.DecorateSchema(s)
	assert.Equal(t, 0.0, *s.Minimum)
	assert.Equal(t, 10.0, *s.Maximum)

	assert.Panics(t, func() { rules.Range(5, 1) })
}

func TestMinMax(t *testing.T) {
	assert.Error(t, rules.Min(int32(3)).Validate(2))
	assert.NoError(t, rules.Min(int32(3)).Validate(3))
	assert.Error(t, rules.Max(uint8(3)).Validate(4))
	assert.NoError(t, rules.Max(uint8(3)).Validate(0))
}

func TestVectorSize(t *testing.T) {
	r := rules.VectorSize[string](1, 2)
	assert.Error(t, r.Validate(nil))
	assert.NoError(t, r.Validate([]string{"a"}))
	assert.Error(t, r.Validate([]string{"a", "b", "c"}))

	open := rules.VectorSize[int](2, -1)
	assert.NoError(t, open.Validate(make([]int, 100)))
	s := &js.Schema{}
	open.DecorateSchema(s)
	assert.Equal(t, 2, *s.MinItems)
	assert.Nil(t, s.MaxItems)
}

func TestStringRules(t *testing.T) {
	assert.Error(t, rules.NonEmpty().Validate(""))
	p := rules.Pattern(`^[a-z]+$`)
	assert.NoError(t, p.Validate("abc"))
	assert.Error(t, p.Validate("ABC"))
	assert.Panics(t, func() { rules.Pattern("(") })

	o := rules.OneOf("a", "b")
	assert.NoError(t, o.Validate("b"))
	assert.EqualError(t, o.Validate("c"), "The value c is not one of [a b]")
	s := &js.Schema{}
	o.DecorateSchema(s)
	assert.Equal(t, []any{"a", "b"}, s.Enum)
}

var gaugeClass = gopdm.DefineClass("Gauge", gopdm.ObjectClass)

type gauge struct {
	gopdm.Object
	Level *gopdm.Field[float64]
	Label *gopdm.Field[string]
}

func newGauge() *gauge {
	g := &gauge{}
	g.Init(g, gaugeClass)
	g.Level = gopdm.AddField(g, "level", gopdm.NewField(0.0).WithValidator(rules.Range(0.0, 10.0)))
	g.Label = gopdm.AddField(g, "label", gopdm.NewField("").WithValidator(rules.NonEmpty().AsWarning()))
	return g
}

func TestRules_OnFields(t *testing.T) {
	g := newGauge()
	err := g.Level.SetValue(12)
	iss, ok := gopdm.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/level", iss[0].Path)
	assert.Equal(t, "range", iss[0].Rule)
	assert.Equal(t, 0.0, g.Level.Value())

	require.NoError(t, g.Label.SetValue(""), "warnings do not reject")

	f := gopdm.NewFactory()
	gopdm.RegisterCreator(f, gaugeClass, newGauge)
	s := gopdm.NewSerializer(f)
	err = s.ReadObjectFromString(newGauge(), `{"Class":"Gauge","level":11}`)
	iss, ok = gopdm.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/level", iss[0].Path)
	assert.Equal(t, gopdm.CodeValidation, iss[0].Code)

	schema, err := s.ClassSchema("Gauge")
	require.NoError(t, err)
	assert.Contains(t, schema, `"minimum":0`)
	assert.Contains(t, schema, `"maximum":10`)
	assert.Contains(t, schema, `"minLength":1`)
}
