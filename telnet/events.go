package telnet

import "sync"

// EventKind identifies a session notification.
type EventKind int

const (
	EventConnect EventKind = iota
	EventReady
	EventWriteDone
	EventLoginFailed
	EventError
	EventTimeout
	EventEnd
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventReady:
		return "ready"
	case EventWriteDone:
		return "writedone"
	case EventLoginFailed:
		return "loginfailed"
	case EventError:
		return "error"
	case EventTimeout:
		return "timeout"
	case EventEnd:
		return "end"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is a single session notification. Prompt is set for EventReady and
// Err for EventError and EventTimeout.
type Event struct {
	Kind   EventKind
	Prompt string
	Err    error
}

type subscriber struct {
	fn    func(Event)
	kinds map[EventKind]bool
}

func (s subscriber) wants(k EventKind) bool {
	return len(s.kinds) == 0 || s.kinds[k]
}

// hub fans events out to subscribers in registration order.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]subscriber
	ids  []int
}

func (h *hub) subscribe(fn func(Event), kinds ...EventKind) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]subscriber)
	}
	id := h.next
	h.next++
	sub := subscriber{fn: fn}
	if len(kinds) > 0 {
		sub.kinds = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}
	h.subs[id] = sub
	h.ids = append(h.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
		})
	}
}

func (h *hub) emit(ev Event) {
	h.mu.Lock()
	live := h.ids[:0]
	for _, id := range h.ids {
		if _, ok := h.subs[id]; ok {
			live = append(live, id)
		}
	}
	h.ids = live
	ids := append([]int(nil), live...)
	h.mu.Unlock()

	// a handler may unsubscribe others, so each one is looked up again
	for _, id := range ids {
		h.mu.Lock()
		sub, ok := h.subs[id]
		h.mu.Unlock()
		if ok && sub.wants(ev.Kind) {
			sub.fn(ev)
		}
	}
}

// reset drops every subscription.
func (h *hub) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = nil
	h.ids = nil
}
