package sse

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types pushed to dashboard clients.
const (
	EventScan           = "scan"
	EventAttendance     = "attendance"
	EventReconciliation = "reconciliation"
	EventDevice         = "device"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	ID   string
	Type string
	Data interface{}
	At   time.Time
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Data: data,
		At:   time.Now(),
	}
}

// Broadcaster is what services publish to. The HTTP layer owns the Hub and
// injects it; services never reach for a global client list.
type Broadcaster interface {
	Broadcast(event Event)
}

// Hub is the registry of connected stream clients. Each subscriber may limit
// itself to a set of event types; an empty set receives everything.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]map[string]struct{}
	bufferSize  int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]map[string]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a new subscriber and returns the event channel and cleanup function
func (h *Hub) Subscribe(types ...string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	filter := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t != "" {
			filter[t] = struct{}{}
		}
	}
	h.subscribers[ch] = filter

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, ch)
			close(ch)
		})
	}

	return ch, cleanup
}

// Broadcast sends event to every matching subscriber. Full channels are
// skipped so a slow client never blocks a publisher.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, filter := range h.subscribers {
		if len(filter) > 0 {
			if _, ok := filter[event.Type]; !ok {
				continue
			}
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// TotalSubscribers returns the number of connected clients.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Nop discards events. Used when no stream is wired.
type Nop struct{}

func (Nop) Broadcast(Event) {}
