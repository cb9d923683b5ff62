// Package remote exposes live object graphs over HTTP. Clients open a
// session, browse schemas and documents, read and write fields that carry
// the Scripting capability, call methods and watch field changes over a
// websocket.
package remote

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reoring/gopdm"
)

// Config configures a Server.
type Config struct {
	// SessionTTL is the idle time after which a session expires.
	SessionTTL time.Duration
	// JWTSecret enables signed session tokens. Empty means clients pass the
	// bare session id.
	JWTSecret string
	// Serialize holds the options used to read request bodies (size and
	// depth limits, duplicate keys).
	Serialize gopdm.SerializeOpt
	// AllowedOrigins lists websocket origins besides localhost.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// DefaultConfig returns the configuration used by NewServer when fields are
// left zero.
func DefaultConfig() Config {
	return Config{SessionTTL: 30 * time.Minute}
}

// watcherClass is the class of the object a Server observes signals with.
var watcherClass = gopdm.DefineClass("RemoteWatcher", gopdm.ObjectClass)

// Server serves the documents added to it. Every access to the graphs goes
// through one mutex; local code mutating a served graph must use Do.
type Server struct {
	factory  *gopdm.Factory
	ser      *gopdm.Serializer
	log      *zap.Logger
	sessions *sessions
	auth     *tokenAuth
	hub      *hub
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	docs    []gopdm.Handle
	watcher *gopdm.Object
	watched map[*gopdm.Object]struct{}
}

// NewServer builds a server creating objects through f.
func NewServer(f *gopdm.Factory, cfg Config) *Server {
	if f == nil {
		panic("remote.NewServer: factory must not be nil")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	log := cfg.Logger
	if log == nil {
		log = gopdm.Logger()
	}
	s := &Server{
		factory:  f,
		ser:      gopdm.NewSerializer(f, cfg.Serialize).WithLogger(log),
		log:      log,
		sessions: newSessions(cfg.SessionTTL, time.Now),
		hub:      newHub(log),
		watcher:  &gopdm.Object{},
		watched:  make(map[*gopdm.Object]struct{}),
	}
	s.watcher.Init(s.watcher, watcherClass)
	if cfg.JWTSecret != "" {
		s.auth = newTokenAuth(cfg.JWTSecret, cfg.SessionTTL)
	}
	origins := slices.Clone(cfg.AllowedOrigins)
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if slices.Contains(origins, origin) {
				return true
			}
			return strings.HasPrefix(origin, "http://localhost") ||
				strings.HasPrefix(origin, "https://localhost") ||
				strings.HasPrefix(origin, "http://127.0.0.1") ||
				strings.HasPrefix(origin, "https://127.0.0.1")
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	s.router = s.routes()
	return s
}

// Serializer returns the serializer the server reads and writes with.
func (s *Server) Serializer() *gopdm.Serializer { return s.ser }

// AddDocument serves the graph rooted at h.
func (s *Server) AddDocument(h gopdm.Handle) {
	if h == nil {
		panic("remote.Server.AddDocument: document must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.docs, h) {
		s.docs = append(s.docs, h)
	}
}

// RemoveDocument stops serving h. It reports whether h was served.
func (s *Server) RemoveDocument(h gopdm.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.docs, h)
	if i < 0 {
		return false
	}
	s.docs = slices.Delete(s.docs, i, i+1)
	s.prune()
	return true
}

// Documents returns the served roots.
func (s *Server) Documents() []gopdm.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.docs)
}

// Do runs fn while holding the graph lock.
func (s *Server) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int { return s.sessions.count() }

// SweepSessions drops expired sessions and forgets watched objects that left
// the served graphs.
func (s *Server) SweepSessions() int {
	s.mu.Lock()
	s.prune()
	s.mu.Unlock()
	return s.sessions.sweep()
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, sweeping expired
// sessions once a minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("remote server listening", zap.String("addr", addr))

	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-tick.C:
			if n := s.SweepSessions(); n > 0 {
				s.log.Debug("expired sessions removed", zap.Int("count", n))
			}
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		}
	}
}

// find looks up an object by UUID across the served graphs. The caller holds
// s.mu.
func (s *Server) find(id string) (*gopdm.Object, bool) {
	for _, d := range s.docs {
		if h, ok := gopdm.FindByUUID(d, id); ok {
			return h.AsObject(), true
		}
	}
	return nil, false
}

// watch connects the server to o's change signal once. The caller holds s.mu.
func (s *Server) watch(o *gopdm.Object) {
	s.prune()
	if _, ok := s.watched[o]; ok {
		return
	}
	s.watched[o] = struct{}{}
	o.Changed().Connect(s.watcher, func(f gopdm.FieldHandle) {
		if !gopdm.RemoteReadable(f) {
			return
		}
		id := o.UUID()
		raw, err := s.ser.WriteFieldValue(f)
		if err != nil {
			s.log.Warn("cannot encode changed field", zap.String("object", id), zap.String("field", f.Keyword()), zap.Error(err))
			return
		}
		s.hub.publish(Event{Object: id, Field: f.Keyword(), Value: raw})
	})
}

// prune disconnects from objects that were destroyed or no longer belong to
// a served graph. The caller holds s.mu.
func (s *Server) prune() {
	for o := range s.watched {
		if o.Destroyed() || !s.serves(o) {
			o.Changed().Disconnect(s.watcher)
			delete(s.watched, o)
		}
	}
}

func (s *Server) serves(o *gopdm.Object) bool {
	root := o
	for p := root.Parent(); p != nil; p = p.Parent() {
		root = p
	}
	for _, d := range s.docs {
		if d.AsObject() == root {
			return true
		}
	}
	return false
}

// watching returns the number of objects whose changes are published.
func (s *Server) watching() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watched)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/sessions", s.openSession)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Delete("/sessions/{id}", s.closeSession)
		r.Get("/schemas", s.listSchemas)
		r.Get("/schemas/{class}", s.getSchema)
		r.Get("/documents", s.listDocuments)
		r.Get("/objects/{uuid}", s.getObject)
		r.Get("/objects/{uuid}/fields/{keyword}", s.getField)
		r.Put("/objects/{uuid}/fields/{keyword}", s.putField)
		r.Post("/objects/{uuid}/methods/{keyword}", s.callMethod)
		r.Get("/objects/{uuid}/events", s.events)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
