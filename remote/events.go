package remote

import (
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Event reports a field change on a watched object.
type Event struct {
	Object string          `json:"object"`
	Field  string          `json:"field"`
	Value  json.RawMessage `json:"value"`
}

type subscriber struct {
	ch chan Event
}

// hub fans events out to websocket subscribers by object UUID. Slow
// subscribers lose events instead of blocking the writer of the graph.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
	log  *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{subs: make(map[string]map[*subscriber]struct{}), log: log}
}

func (h *hub) subscribe(id string) *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := &subscriber{ch: make(chan Event, 64)}
	if h.subs[id] == nil {
		h.subs[id] = make(map[*subscriber]struct{})
	}
	h.subs[id][sub] = struct{}{}
	return sub
}

func (h *hub) unsubscribe(id string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[id]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ev.Object] {
		select {
		case sub.ch <- ev:
		default:
			h.log.Warn("dropping event for slow subscriber", zap.String("object", ev.Object), zap.String("field", ev.Field))
		}
	}
}

func (h *hub) subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}
