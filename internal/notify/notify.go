package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind identifies which data source changed
type Kind int

const (
	KindRecordChanged Kind = iota
	KindHolidayChanged
	KindConfigChanged
)

// String returns a display label for the event kind
func (k Kind) String() string {
	switch k {
	case KindRecordChanged:
		return "record-changed"
	case KindHolidayChanged:
		return "holiday-changed"
	case KindConfigChanged:
		return "config-changed"
	default:
		return "unknown"
	}
}

// Event tells subscribers that day resolutions may be stale
type Event struct {
	Kind Kind
	At   time.Time
}

// Hub fans change events out to subscribers. Sends never block a
// writer: a subscriber that has fallen behind misses intermediate
// events but still holds a pending one, so its next re-evaluation
// picks up the latest state.
type Hub struct {
	mu     sync.Mutex
	subs   []chan Event
	logger *zap.Logger
}

// NewHub creates an event hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger}
}

// Subscribe registers a new subscriber channel
func (h *Hub) Subscribe() <-chan Event {
	ch := make(chan Event, 8)

	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()

	return ch
}

// Publish delivers an event to every subscriber without blocking
func (h *Hub) Publish(kind Kind) {
	event := Event{Kind: kind, At: time.Now()}

	h.mu.Lock()
	subs := make([]chan Event, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			h.logger.Debug("Subscriber behind, dropping event",
				zap.String("kind", kind.String()))
		}
	}

	h.logger.Debug("Change event published",
		zap.String("kind", kind.String()),
		zap.Int("subscribers", len(subs)))
}

// RecordChanged signals an explicit day record write
func (h *Hub) RecordChanged() {
	h.Publish(KindRecordChanged)
}

// HolidayChanged signals a holiday data replacement or clear
func (h *Hub) HolidayChanged() {
	h.Publish(KindHolidayChanged)
}

// ConfigChanged signals a pattern/holiday configuration change
func (h *Hub) ConfigChanged() {
	h.Publish(KindConfigChanged)
}
