package remote

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gopdm"
)

func TestSessions_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ss := newSessions(time.Minute, func() time.Time { return now })

	a := ss.open(Regular)
	b := ss.open(Observing)
	assert.Equal(t, 2, ss.count())

	now = now.Add(50 * time.Second)
	got, ok := ss.touch(a.ID)
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Minute), got.Expires)

	now = now.Add(30 * time.Second)
	_, ok = ss.touch(a.ID)
	assert.True(t, ok, "touch extends the expiry")
	assert.Equal(t, 1, ss.sweep(), "b expired")

	_, ok = ss.touch(b.ID)
	assert.False(t, ok)

	assert.True(t, ss.close(a.ID))
	assert.False(t, ss.close(a.ID))
}

func TestParseSessionType(t *testing.T) {
	tests := []struct {
		in   string
		want SessionType
		ok   bool
	}{
		{"", Regular, true},
		{"regular", Regular, true},
		{"OBSERVING", Observing, true},
		{"admin", Regular, false},
	}
	for _, tt := range tests {
		got, ok := ParseSessionType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestTokenAuth(t *testing.T) {
	a := newTokenAuth("secret", time.Minute)
	tok, err := a.issue(Session{ID: "abc", Type: Observing})
	require.NoError(t, err)

	sid, err := a.sessionID(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)

	_, err = newTokenAuth("other", time.Minute).sessionID(tok)
	assert.Error(t, err)

	_, err = a.sessionID("not-a-token")
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{gopdm.CodeNotFound, http.StatusNotFound},
		{gopdm.CodeUnknownClass, http.StatusNotFound},
		{gopdm.CodeNotExposed, http.StatusForbidden},
		{gopdm.CodeArgumentCount, http.StatusBadRequest},
		{gopdm.CodeValidation, http.StatusUnprocessableEntity},
		{gopdm.CodeTruncated, http.StatusRequestEntityTooLarge},
		{gopdm.CodeIOError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.code), tt.code)
	}
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	h := newHub(gopdm.Logger())
	sub := h.subscribe("x")
	for i := 0; i < cap(sub.ch)+5; i++ {
		h.publish(Event{Object: "x", Field: "f"})
	}
	assert.Len(t, sub.ch, cap(sub.ch))

	h.unsubscribe("x", sub)
	assert.Equal(t, 0, h.subscribers("x"))
}
