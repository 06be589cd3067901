package cache

import (
	"testing"

	"plusdb/bplustree"
)

func TestGetMiss(t *testing.T) {
	c := New(2)
	if _, ok := c.Get("users", "k1"); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestPutGet(t *testing.T) {
	c := New(2)
	c.Put("users", "k1", bplustree.Record{"a": 1})
	v, ok := c.Get("users", "k1")
	if !ok || v["a"] != 1 {
		t.Fatalf("got %v, %v", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Put("users", "k1", bplustree.Record{"a": 1})
	c.Put("users", "k2", bplustree.Record{"a": 2})
	c.Get("users", "k1") // k1 now most recently used; k2 is the LRU entry
	c.Put("users", "k3", bplustree.Record{"a": 3})

	if _, ok := c.Get("users", "k2"); ok {
		t.Fatal("expected k2 to have been evicted")
	}
	if _, ok := c.Get("users", "k1"); !ok {
		t.Fatal("expected k1 to survive eviction")
	}
	if _, ok := c.Get("users", "k3"); !ok {
		t.Fatal("expected k3 to be present")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(0)
	c.Put("users", "k1", bplustree.Record{"a": 1})
	c.Invalidate("users", "k1")
	if _, ok := c.Get("users", "k1"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestInvalidateTable(t *testing.T) {
	c := New(0)
	c.Put("users", "k1", bplustree.Record{"a": 1})
	c.Put("orders", "k1", bplustree.Record{"a": 2})
	c.InvalidateTable("users")

	if _, ok := c.Get("users", "k1"); ok {
		t.Fatal("expected users entry to be gone")
	}
	if _, ok := c.Get("orders", "k1"); !ok {
		t.Fatal("expected orders entry to survive")
	}
}
