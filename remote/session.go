package remote

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionType decides what a session may do. Observing sessions can read
// fields and call const methods only.
type SessionType int

const (
	Regular SessionType = iota
	Observing
)

func (t SessionType) String() string {
	if t == Observing {
		return "OBSERVING"
	}
	return "REGULAR"
}

// ParseSessionType accepts REGULAR and OBSERVING in any case. The empty
// string means REGULAR.
func ParseSessionType(s string) (SessionType, bool) {
	switch strings.ToUpper(s) {
	case "", "REGULAR":
		return Regular, true
	case "OBSERVING":
		return Observing, true
	}
	return Regular, false
}

// Session is a client connection to the server.
type Session struct {
	ID      string
	Type    SessionType
	Expires time.Time
}

type sessions struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]*Session
}

func newSessions(ttl time.Duration, now func() time.Time) *sessions {
	return &sessions{ttl: ttl, now: now, m: make(map[string]*Session)}
}

func (ss *sessions) open(t SessionType) Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s := &Session{ID: uuid.NewString(), Type: t, Expires: ss.now().Add(ss.ttl)}
	ss.m[s.ID] = s
	return *s
}

// touch returns the live session with id and extends its expiry. Expired
// sessions are dropped.
func (ss *sessions) touch(id string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.m[id]
	if !ok {
		return Session{}, false
	}
	now := ss.now()
	if now.After(s.Expires) {
		delete(ss.m, id)
		return Session{}, false
	}
	s.Expires = now.Add(ss.ttl)
	return *s, true
}

func (ss *sessions) close(id string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	_, ok := ss.m[id]
	delete(ss.m, id)
	return ok
}

// sweep removes expired sessions and returns how many were removed.
func (ss *sessions) sweep() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	now := ss.now()
	n := 0
	for id, s := range ss.m {
		if now.After(s.Expires) {
			delete(ss.m, id)
			n++
		}
	}
	return n
}

func (ss *sessions) count() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.m)
}
