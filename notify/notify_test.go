package notify

import "testing"

func TestPublishDeliversToWatcher(t *testing.T) {
	h := NewHub()
	sub := h.Watch("users")

	h.Publish(Event{Table: "users", Op: OpInsert, Key: "k1"})

	select {
	case ev := <-sub:
		if ev.Op != OpInsert || ev.Key != "k1" {
			t.Fatalf("got %+v", ev)
		}
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestPublishIgnoresOtherTables(t *testing.T) {
	h := NewHub()
	sub := h.Watch("users")
	h.Publish(Event{Table: "orders", Op: OpInsert, Key: "k1"})

	select {
	case ev := <-sub:
		t.Fatalf("unexpected event for unrelated table: %+v", ev)
	default:
	}
}

func TestUnwatchClosesChannel(t *testing.T) {
	h := NewHub()
	sub := h.Watch("users")
	h.Unwatch("users", sub)

	h.Publish(Event{Table: "users", Op: OpDelete, Key: "k1"})

	_, ok := <-sub
	if ok {
		t.Fatal("expected channel to be closed after unwatch")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Watch("users")
	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish(Event{Table: "users", Op: OpUpdate, Key: "k"})
	}
	if len(sub) != subscriberBuffer {
		t.Fatalf("subscriber buffer length = %d, want %d", len(sub), subscriberBuffer)
	}
}
