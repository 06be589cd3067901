// Package notify implements per-table mutation notifications: a watcher
// subscribes to a table name and receives an Event for every insert,
// update, and delete the service layer applies to it.
package notify

import "sync"

// Op identifies which mutation produced an Event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one committed mutation against a table.
type Event struct {
	Table string
	Op    Op
	Key   string
}

// Subscriber is a buffered channel of events for one watcher. Publish never
// blocks on a slow subscriber: a full channel simply drops the event rather
// than stalling the writer that triggered it.
type Subscriber chan Event

const subscriberBuffer = 64

// Hub fans out table mutation events to any number of subscribers per
// table.
type Hub struct {
	mu       sync.Mutex
	watchers map[string][]Subscriber
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string][]Subscriber)}
}

// Publish delivers ev to every current watcher of ev.Table. Subscribers
// whose buffer is full are skipped for this event rather than blocking the
// publisher.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	subs := append([]Subscriber(nil), h.watchers[ev.Table]...)
	h.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Watch registers a new subscriber for table and returns the channel it
// will receive events on.
func (h *Hub) Watch(table string) Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := make(Subscriber, subscriberBuffer)
	h.watchers[table] = append(h.watchers[table], sub)
	return sub
}

// Unwatch removes sub from table's watcher list and closes it. Unwatch is a
// no-op if sub is not currently registered for table.
func (h *Hub) Unwatch(table string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.watchers[table]
	if !ok {
		return
	}
	for i, s := range subs {
		if s == sub {
			h.watchers[table] = append(subs[:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}
