package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
	"github.com/reoring/gopdm/remote"
)

var sensorClass = gopdm.DefineClass("Sensor", gopdm.ObjectClass, gopdm.ClassDoc("A measuring device"))

type sensor struct {
	gopdm.Object
	Label   *gopdm.Field[string]
	Reading *gopdm.Field[float64]
	Secret  *gopdm.Field[string]
	Probe   *gopdm.ChildField[*sensor]
}

func newSensor() *sensor {
	s := &sensor{}
	s.Init(s, sensorClass)
	s.Label = gopdm.AddField(s, "label", gopdm.NewField("").WithScripting(true, true))
	s.Reading = gopdm.AddField(s, "reading", gopdm.NewField(0.0).WithScripting(true, false))
	s.Secret = gopdm.AddField(s, "secret", gopdm.NewField("hidden"))
	s.Probe = gopdm.AddField(s, "probe", gopdm.NewChildField[*sensor](sensorClass))
	gopdm.AddMethod(s, "scaled", func(factor float64) float64 {
		return s.Reading.Value() * factor
	}, "factor").Const()
	gopdm.AddMethod(s, "reset", func() error {
		return s.Reading.SetValue(0)
	})
	return s
}

func newFactory() *gopdm.Factory {
	f := gopdm.NewFactory()
	gopdm.RegisterCreator(f, sensorClass, newSensor)
	return f
}

type env struct {
	srv  *remote.Server
	root *sensor
	ts   *httptest.Server
}

func setup(t *testing.T, cfg remote.Config) *env {
	t.Helper()
	srv := remote.NewServer(newFactory(), cfg)
	root := newSensor()
	require.NoError(t, root.Label.SetValue("main"))
	require.NoError(t, root.Reading.SetValue(2.5))
	probe := newSensor()
	require.NoError(t, probe.Label.SetValue("probe"))
	root.Probe.SetObject(probe)
	srv.AddDocument(root)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &env{srv: srv, root: root, ts: ts}
}

func (e *env) dial(t *testing.T, typ remote.SessionType) *remote.Client {
	t.Helper()
	c, err := remote.Dial(context.Background(), e.ts.URL, typ, e.ts.Client())
	require.NoError(t, err)
	return c
}
