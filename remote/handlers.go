package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reoring/gopdm"
)

// SessionHeader carries the session id (or token) when no Authorization
// header is sent.
const SessionHeader = "X-Gopdm-Session"

type ctxKey struct{}

func sessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}

type sessionRequest struct {
	Type string `json:"type"`
}

type sessionResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Expires time.Time `json:"expires"`
	Token   string    `json:"token,omitempty"`
}

// DocumentInfo identifies a served document.
type DocumentInfo struct {
	UUID  string `json:"uuid"`
	Class string `json:"class"`
}

func credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if h := r.Header.Get(SessionHeader); h != "" {
		return h
	}
	// Browsers cannot set headers on websocket handshakes.
	return r.URL.Query().Get("session")
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := credential(r)
		if s.auth != nil && id != "" {
			sid, err := s.auth.sessionID(id)
			if err != nil {
				s.log.Debug("rejected token", zap.Error(err))
				id = ""
			} else {
				id = sid
			}
		}
		sess, ok := s.sessions.touch(id)
		if id == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{Issues: []wireIssue{{Path: "/", Code: gopdm.CodeNotExposed, Message: errNoSession.Error()}}})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		s.writeError(w, r, issue(gopdm.CodeIOError, "/", err))
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, issue(gopdm.CodeParseError, "/", err))
			return
		}
	}
	typ, ok := ParseSessionType(req.Type)
	if !ok {
		s.writeError(w, r, issue(gopdm.CodeInvalidType, "/type", errors.New("unknown session type "+strconv.Quote(req.Type))))
		return
	}
	sess := s.sessions.open(typ)
	resp := sessionResponse{ID: sess.ID, Type: sess.Type.String(), Expires: sess.Expires}
	if s.auth != nil {
		tok, err := s.auth.issue(sess)
		if err != nil {
			s.sessions.close(sess.ID)
			s.writeError(w, r, err)
			return
		}
		resp.Token = tok
	}
	s.log.Info("session opened", zap.String("session", sess.ID), zap.Stringer("type", sess.Type))
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != sessionFrom(r.Context()).ID || !s.sessions.close(id) {
		s.writeError(w, r, notFound("session "+id))
		return
	}
	s.log.Info("session closed", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"classes": s.factory.Keywords()})
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	text, err := s.ser.ClassSchema(chi.URLParam(r, "class"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, []byte(text))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]DocumentInfo, 0, len(s.docs))
	for _, d := range s.docs {
		o := d.AsObject()
		out = append(out, DocumentInfo{UUID: o.UUID(), Class: o.ClassKeyword()})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	q := r.URL.Query()
	ser := s.ser.WithType(gopdm.DataFull)
	if skel, _ := strconv.ParseBool(q.Get("skeleton")); skel {
		ser = ser.WithType(gopdm.DataSkeleton)
	}

	s.mu.Lock()
	o, ok := s.find(id)
	if ok && q.Get("class") != "" && !gopdm.MatchesClassKeyword(q.Get("class"), o.InheritanceStack()) {
		ok = false
	}
	var (
		text string
		err  error
	)
	if ok {
		text, err = ser.WriteObjectToString(o.Self())
	}
	s.mu.Unlock()

	switch {
	case !ok:
		s.writeError(w, r, notFound("object "+id))
	case err != nil:
		s.writeError(w, r, err)
	default:
		writeRaw(w, http.StatusOK, []byte(text))
	}
}

// lookupField resolves the object and field named in the URL. The caller
// holds s.mu.
func (s *Server) lookupField(r *http.Request) (gopdm.FieldHandle, error) {
	id, kw := chi.URLParam(r, "uuid"), chi.URLParam(r, "keyword")
	o, ok := s.find(id)
	if !ok {
		return nil, notFound("object " + id)
	}
	f, ok := o.FindField(kw)
	if !ok {
		return nil, notFound("field " + kw)
	}
	return f, nil
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	raw, err := func() ([]byte, error) {
		f, err := s.lookupField(r)
		if err != nil {
			return nil, err
		}
		if !gopdm.RemoteReadable(f) {
			return nil, issue(gopdm.CodeNotExposed, "/"+f.Keyword(), errNotReadable)
		}
		return s.ser.WriteFieldValue(f)
	}()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (s *Server) putField(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r.Context()).Type == Observing {
		s.writeError(w, r, issue(gopdm.CodeNotExposed, "/", errObserving))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, issue(gopdm.CodeIOError, "/", err))
		return
	}
	s.mu.Lock()
	raw, err := func() ([]byte, error) {
		f, err := s.lookupField(r)
		if err != nil {
			return nil, err
		}
		if !gopdm.RemoteWritable(f) {
			return nil, issue(gopdm.CodeNotExposed, "/"+f.Keyword(), errNotWritable)
		}
		if err := s.ser.ReadFieldValue(f, body); err != nil {
			return nil, err
		}
		if !f.IsReadable() {
			return nil, nil
		}
		return s.ser.WriteFieldValue(f)
	}()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if raw == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (s *Server) callMethod(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, issue(gopdm.CodeIOError, "/", err))
		return
	}
	id, kw := chi.URLParam(r, "uuid"), chi.URLParam(r, "keyword")
	s.mu.Lock()
	result, err := func() (string, error) {
		o, ok := s.find(id)
		if !ok {
			return "", notFound("object " + id)
		}
		m, ok := o.FindMethod(kw)
		if !ok {
			return "", notFound("method " + kw)
		}
		if !m.IsConst() && sessionFrom(r.Context()).Type == Observing {
			return "", issue(gopdm.CodeNotExposed, "/", errObserving)
		}
		return m.Execute(r.Context(), string(body))
	}()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Debug("method executed", zap.String("object", id), zap.String("method", kw))
	writeRaw(w, http.StatusOK, []byte(result))
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	s.mu.Lock()
	o, ok := s.find(id)
	if ok {
		s.watch(o)
	}
	s.mu.Unlock()
	if !ok {
		s.writeError(w, r, notFound("object "+id))
		return
	}

	// Subscribe before the handshake completes so no change is missed.
	sub := s.hub.subscribe(id)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.unsubscribe(id, sub)
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() {
		s.hub.unsubscribe(id, sub)
		conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-sub.ch:
			msg, err := json.Marshal(ev)
			if err != nil {
				s.log.Warn("cannot encode event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
