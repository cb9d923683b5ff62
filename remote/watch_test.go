package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

var boxClass = gopdm.DefineClass("Box", gopdm.ObjectClass)

type box struct {
	gopdm.Object
	Label *gopdm.Field[string]
	Inner *gopdm.ChildField[*box]
}

func newBox() *box {
	b := &box{}
	b.Init(b, boxClass)
	b.Label = gopdm.AddField(b, "label", gopdm.NewField("").WithScripting(true, true))
	b.Inner = gopdm.AddField(b, "inner", gopdm.NewChildField[*box](boxClass))
	return b
}

func newBoxServer(t *testing.T) (*Server, *box) {
	t.Helper()
	f := gopdm.NewFactory()
	gopdm.RegisterCreator(f, boxClass, newBox)
	s := NewServer(f, Config{})
	root := newBox()
	s.AddDocument(root)
	return s, root
}

func TestServer_WatchForgetsObjectsLeavingTheGraph(t *testing.T) {
	s, root := newBoxServer(t)
	inner, detached := newBox(), newBox()
	root.Inner.SetObject(inner)
	inner.Inner.SetObject(detached)

	s.Do(func() {
		s.watch(root.AsObject())
		s.watch(inner.AsObject())
		s.watch(detached.AsObject())
	})
	assert.Equal(t, 3, s.watching())

	s.Do(func() { inner.Inner.Clear() })
	s.SweepSessions()
	assert.Equal(t, 2, s.watching())
	assert.Equal(t, 0, detached.Changed().Connections(), "detached objects are no longer watched")

	s.Do(func() { root.Inner.Clear().Destroy() })
	s.SweepSessions()
	assert.Equal(t, 1, s.watching())

	require.True(t, s.RemoveDocument(root))
	assert.Equal(t, 0, s.watching())
	assert.Equal(t, 0, root.Changed().Connections())
}

func TestServer_EventsCarryCurrentUUID(t *testing.T) {
	s, root := newBoxServer(t)
	s.Do(func() { s.watch(root.AsObject()) })
	root.SetUUID("renamed")
	sub := s.hub.subscribe("renamed")
	defer s.hub.unsubscribe("renamed", sub)

	s.Do(func() { require.NoError(t, root.Label.SetValue("x")) })
	select {
	case ev := <-sub.ch:
		assert.Equal(t, "renamed", ev.Object)
		assert.Equal(t, "label", ev.Field)
		assert.JSONEq(t, `"x"`, string(ev.Value))
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}
