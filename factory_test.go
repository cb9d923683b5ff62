package gopdm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

func TestFactory_CreateByKeyword(t *testing.T) {
	f := newTestFactory()
	h, ok := f.Create("SpecialItem")
	require.True(t, ok)
	assert.Equal(t, []string{"SpecialItem", "Item", "Object"}, h.AsObject().InheritanceStack())

	_, ok = f.Create("Unknown")
	assert.False(t, ok)

	it, ok := gopdm.CreateAs[*item](f, "Item")
	require.True(t, ok)
	assert.Equal(t, "Item", it.ClassKeyword())
	_, ok = gopdm.CreateAs[*item](f, "Numbers")
	assert.False(t, ok)

	assert.Equal(t, []string{"Item", "SpecialItem", "Container", "Numbers"}, f.Keywords())
	cls, ok := f.Class("Container")
	require.True(t, ok)
	assert.Same(t, containerClass, cls)
	assert.Len(t, f.Classes(), 4)
}

func TestFactory_RegistrationPanics(t *testing.T) {
	f := newTestFactory()
	assert.Panics(t, func() { gopdm.RegisterCreator(f, itemClass, newItem) })
	assert.Panics(t, func() { f.Register(nil, func() gopdm.Handle { return newItem() }) })

	wrong := gopdm.NewFactory()
	gopdm.RegisterCreator(wrong, numbersClass, newItem)
	assert.Panics(t, func() { wrong.Create("Numbers") }, "constructor must build the registered class")
}

func TestFactory_Independent(t *testing.T) {
	a, b := gopdm.NewFactory(), gopdm.NewFactory()
	gopdm.RegisterCreator(a, itemClass, newItem)
	_, ok := b.Create("Item")
	assert.False(t, ok)
	assert.Same(t, gopdm.DefaultFactory(), gopdm.DefaultFactory())
}
