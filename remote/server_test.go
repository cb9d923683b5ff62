package remote_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
	"github.com/reoring/gopdm/remote"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	iss, ok := gopdm.AsIssues(err)
	require.True(t, ok, "expected Issues, got %T: %v", err, err)
	assert.True(t, iss.HasCode(code), "expected %s in %v", code, iss)
}

func TestServer_Sessions(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()

	c := e.dial(t, remote.Regular)
	assert.NotEmpty(t, c.SessionID())
	assert.Equal(t, 1, e.srv.Sessions())

	require.NoError(t, c.Close(ctx))
	assert.Equal(t, 0, e.srv.Sessions())

	_, err := c.Documents(ctx)
	requireCode(t, err, gopdm.CodeNotExposed)
}

func TestServer_RequiresSession(t *testing.T) {
	e := setup(t, remote.DefaultConfig())

	resp, err := e.ts.Client().Get(e.ts.URL + "/documents")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RejectsUnknownSessionType(t *testing.T) {
	e := setup(t, remote.DefaultConfig())

	resp, err := e.ts.Client().Post(e.ts.URL+"/sessions", "application/json", strings.NewReader(`{"type":"ADMIN"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Browse(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Regular)

	classes, err := c.Classes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sensor"}, classes)

	schema, err := c.Schema(ctx, "Sensor")
	require.NoError(t, err)
	assert.Contains(t, schema, `"/schemas/Sensor"`)
	assert.Contains(t, schema, `"scaled"`)

	_, err = c.Schema(ctx, "Nope")
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []remote.DocumentInfo{{UUID: e.root.UUID(), Class: "Sensor"}}, docs)
}

func TestServer_Object(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Regular)

	full, err := c.Object(ctx, e.root.UUID(), false)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(full), &m))
	assert.Equal(t, "main", m["label"])
	assert.Equal(t, "probe", m["probe"].(map[string]any)["label"])

	skel, err := c.Object(ctx, e.root.UUID(), true)
	require.NoError(t, err)
	m = nil
	require.NoError(t, json.Unmarshal([]byte(skel), &m))
	assert.Equal(t, "main", m["label"])
	probe := m["probe"].(map[string]any)
	assert.NotContains(t, probe, "label")
	assert.Equal(t, e.root.Probe.Object().UUID(), probe["UUID"])

	nested, err := c.Object(ctx, e.root.Probe.Object().UUID(), false)
	require.NoError(t, err)
	assert.Contains(t, nested, `"probe"`)

	_, err = c.Object(ctx, "missing", false)
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestServer_ObjectClassFilter(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	c := e.dial(t, remote.Regular)

	get := func(class string) int {
		req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/objects/"+e.root.UUID()+"?class="+class, nil)
		require.NoError(t, err)
		req.Header.Set(remote.SessionHeader, c.SessionID())
		resp, err := e.ts.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, get("Sensor"))
	assert.Equal(t, http.StatusOK, get("Object"))
	assert.Equal(t, http.StatusNotFound, get("Item"))
}

func TestServer_Fields(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Regular)
	id := e.root.UUID()

	raw, err := c.GetField(ctx, id, "label")
	require.NoError(t, err)
	assert.JSONEq(t, `"main"`, string(raw))

	_, err = c.GetField(ctx, id, "secret")
	requireCode(t, err, gopdm.CodeNotExposed)

	_, err = c.GetField(ctx, id, "nothing")
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))

	require.NoError(t, c.SetField(ctx, id, "label", json.RawMessage(`"renamed"`)))
	e.srv.Do(func() { assert.Equal(t, "renamed", e.root.Label.Value()) })

	requireCode(t, c.SetField(ctx, id, "reading", json.RawMessage(`1`)), gopdm.CodeNotExposed)
	requireCode(t, c.SetField(ctx, id, "label", json.RawMessage(`12`)), gopdm.CodeInvalidType)
}

func TestServer_Methods(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Regular)
	id := e.root.UUID()

	res, err := c.Call(ctx, id, "scaled", 2)
	require.NoError(t, err)
	assert.Equal(t, "double", res.Type)
	assert.JSONEq(t, `5`, string(res.Value))

	_, err = c.Call(ctx, id, "scaled")
	requireCode(t, err, gopdm.CodeArgumentCount)

	_, err = c.Call(ctx, id, "scaled", "two")
	requireCode(t, err, gopdm.CodeArgumentType)

	res, err = c.Call(ctx, id, "reset")
	require.NoError(t, err)
	assert.Equal(t, "void", res.Type)
	e.srv.Do(func() { assert.Equal(t, 0.0, e.root.Reading.Value()) })

	_, err = c.Call(ctx, id, "explode")
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestServer_ObservingSession(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Observing)
	id := e.root.UUID()

	raw, err := c.GetField(ctx, id, "label")
	require.NoError(t, err)
	assert.JSONEq(t, `"main"`, string(raw))

	requireCode(t, c.SetField(ctx, id, "label", json.RawMessage(`"x"`)), gopdm.CodeNotExposed)

	_, err = c.Call(ctx, id, "scaled", 1)
	require.NoError(t, err)

	_, err = c.Call(ctx, id, "reset")
	requireCode(t, err, gopdm.CodeNotExposed)
}

func TestServer_JWT(t *testing.T) {
	cfg := remote.DefaultConfig()
	cfg.JWTSecret = "test-secret"
	e := setup(t, cfg)
	ctx := context.Background()
	c := e.dial(t, remote.Regular)

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	// A bare session id is not accepted once tokens are enabled.
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/documents", nil)
	require.NoError(t, err)
	req.Header.Set(remote.SessionHeader, c.SessionID())
	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFieldProxy(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	c := e.dial(t, remote.Regular)

	mirror := gopdm.NewField("").WithAccessor(remote.FieldProxy[string](c, e.root.UUID(), "label"))
	assert.Equal(t, "main", mirror.Value())

	require.NoError(t, mirror.SetValue("from proxy"))
	e.srv.Do(func() { assert.Equal(t, "from proxy", e.root.Label.Value()) })

	hidden := gopdm.NewField("").WithAccessor(remote.FieldProxy[string](c, e.root.UUID(), "secret"))
	_, err := hidden.Get()
	requireCode(t, err, gopdm.CodeNotExposed)
}

func TestServer_Events(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	c := e.dial(t, remote.Regular)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := c.Subscribe(ctx, e.root.UUID())
	require.NoError(t, err)

	e.srv.Do(func() {
		require.NoError(t, e.root.Secret.SetValue("changed"))
		require.NoError(t, e.root.Label.SetValue("live"))
	})

	select {
	case ev := <-events:
		assert.Equal(t, e.root.UUID(), ev.Object)
		assert.Equal(t, "label", ev.Field)
		assert.JSONEq(t, `"live"`, string(ev.Value))
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	require.NoError(t, c.SetField(context.Background(), e.root.UUID(), "label", json.RawMessage(`"remote"`)))
	select {
	case ev := <-events:
		assert.JSONEq(t, `"remote"`, string(ev.Value))
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	_, err = c.Subscribe(ctx, "missing")
	assert.True(t, errors.Is(err, gopdm.ErrNotFound))
}

func TestServer_RemoveDocument(t *testing.T) {
	e := setup(t, remote.DefaultConfig())
	ctx := context.Background()
	c := e.dial(t, remote.Regular)

	assert.True(t, e.srv.RemoveDocument(e.root))
	assert.False(t, e.srv.RemoveDocument(e.root))

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
