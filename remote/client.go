package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/reoring/gopdm"
)

// Client talks to a Server through one session.
type Client struct {
	base    string
	hc      *http.Client
	session sessionResponse
}

// Dial opens a session of type t on the server at baseURL. A nil hc uses a
// client with a 30 second timeout.
func Dial(ctx context.Context, baseURL string, t SessionType, hc *http.Client) (*Client, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
	body, _ := json.Marshal(sessionRequest{Type: t.String()})
	data, err := c.do(ctx, http.MethodPost, "/sessions", body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.session); err != nil {
		return nil, issue(gopdm.CodeParseError, "/", err)
	}
	return c, nil
}

// SessionID returns the id of the client's session.
func (c *Client) SessionID() string { return c.session.ID }

// Close ends the session.
func (c *Client) Close(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(c.session.ID), nil)
	return err
}

func (c *Client) credential() string {
	if c.session.Token != "" {
		return c.session.Token
	}
	return c.session.ID
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, issue(gopdm.CodeIOError, "/", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred := c.credential(); cred != "" {
		req.Header.Set("Authorization", "Bearer "+cred)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, issue(gopdm.CodeIOError, "/", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, issue(gopdm.CodeIOError, "/", err)
	}
	if resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}
	return data, nil
}

// Classes lists the class keywords the server can create.
func (c *Client) Classes(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, "/schemas", nil)
	if err != nil {
		return nil, err
	}
	var out map[string][]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, issue(gopdm.CodeParseError, "/", err)
	}
	return out["classes"], nil
}

// Schema returns the JSON schema of a class.
func (c *Client) Schema(ctx context.Context, class string) (string, error) {
	data, err := c.do(ctx, http.MethodGet, "/schemas/"+url.PathEscape(class), nil)
	return string(data), err
}

// Documents lists the served documents.
func (c *Client) Documents(ctx context.Context) ([]DocumentInfo, error) {
	data, err := c.do(ctx, http.MethodGet, "/documents", nil)
	if err != nil {
		return nil, err
	}
	var out []DocumentInfo
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, issue(gopdm.CodeParseError, "/", err)
	}
	return out, nil
}

// Object returns the serialized object with id. A skeleton omits the values
// of nested records.
func (c *Client) Object(ctx context.Context, id string, skeleton bool) (string, error) {
	path := "/objects/" + url.PathEscape(id)
	if skeleton {
		path += "?skeleton=true"
	}
	data, err := c.do(ctx, http.MethodGet, path, nil)
	return string(data), err
}

func fieldPath(id, keyword string) string {
	return "/objects/" + url.PathEscape(id) + "/fields/" + url.PathEscape(keyword)
}

// GetField returns the encoded value of a remote field.
func (c *Client) GetField(ctx context.Context, id, keyword string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, fieldPath(id, keyword), nil)
}

// SetField writes the encoded value of a remote field.
func (c *Client) SetField(ctx context.Context, id, keyword string, value json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPut, fieldPath(id, keyword), value)
	return err
}

// Result is the outcome of a remote method call.
type Result struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Call invokes a method with positional arguments.
func (c *Client) Call(ctx context.Context, id, method string, args ...any) (Result, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return Result{}, issue(gopdm.CodeArgumentType, "/", err)
	}
	data, err := c.do(ctx, http.MethodPost, "/objects/"+url.PathEscape(id)+"/methods/"+url.PathEscape(method), body)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, issue(gopdm.CodeParseError, "/", err)
	}
	return res, nil
}

// Subscribe streams field changes of the object with id until ctx is
// cancelled or the connection drops; the channel is closed then.
func (c *Client) Subscribe(ctx context.Context, id string) (<-chan Event, error) {
	u := "ws" + strings.TrimPrefix(c.base, "http") + "/objects/" + url.PathEscape(id) + "/events"
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+c.credential())
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, hdr)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			data, _ := io.ReadAll(resp.Body)
			return nil, decodeError(resp.StatusCode, data)
		}
		return nil, issue(gopdm.CodeIOError, "/", err)
	}
	out := make(chan Event, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev Event
			if json.Unmarshal(msg, &ev) != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// FieldProxy returns an accessor reading and writing a remote field, so a
// local Field can mirror it with WithAccessor.
func FieldProxy[T any](c *Client, id, keyword string) *gopdm.ProxyAccessor[T] {
	return &gopdm.ProxyAccessor[T]{
		Get: func() (T, error) {
			var v T
			raw, err := c.GetField(context.Background(), id, keyword)
			if err != nil {
				return v, err
			}
			if err := json.Unmarshal(raw, &v); err != nil {
				return v, issue(gopdm.CodeInvalidType, "/"+keyword, err)
			}
			return v, nil
		},
		Set: func(v T) error {
			raw, err := json.Marshal(v)
			if err != nil {
				return issue(gopdm.CodeInvalidType, "/"+keyword, err)
			}
			return c.SetField(context.Background(), id, keyword, raw)
		},
	}
}
