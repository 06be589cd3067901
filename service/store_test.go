package service

import (
	"errors"
	"path/filepath"
	"testing"

	"plusdb/bplustree"
	"plusdb/dbkey"
	"plusdb/dberrors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mydb_data")
	s, err := Open(dir, Options{Order: 3, CacheSize: 8})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestCreateInsertReadLifecycle(t *testing.T) {
	s := openTestStore(t)
	if err := s.CreateTable("users"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	k := dbkey.String("k1")
	if err := s.Insert("users", k, bplustree.Record{"a": 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	v, err := s.Read("users", k)
	if err != nil || v["a"] != 1 {
		t.Fatalf("read = %v, %v", v, err)
	}

	if err := s.Update("users", k, bplustree.Record{"a": 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	v, err = s.Read("users", k)
	if err != nil || v["a"] != 2 {
		t.Fatalf("read after update = %v, %v", v, err)
	}

	if err := s.Delete("users", k); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read("users", k); !errors.Is(err, dberrors.ErrNoSuchKey) {
		t.Fatalf("expected ErrNoSuchKey after delete, got %v", err)
	}
}

func TestInsertNilValueIsInvalid(t *testing.T) {
	s := openTestStore(t)
	s.CreateTable("users")
	if err := s.Insert("users", dbkey.String("k1"), nil); !errors.Is(err, dberrors.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestCacheServesReadsAndInvalidatesOnWrite(t *testing.T) {
	s := openTestStore(t)
	s.CreateTable("users")
	k := dbkey.String("k1")
	s.Insert("users", k, bplustree.Record{"a": 1})

	if _, ok := s.cache.Get("users", keyCacheID(k)); !ok {
		t.Fatal("expected insert to populate the cache")
	}

	s.Delete("users", k)
	if _, ok := s.cache.Get("users", keyCacheID(k)); ok {
		t.Fatal("expected delete to invalidate the cache entry")
	}
}

func TestWatchReceivesMutationEvents(t *testing.T) {
	s := openTestStore(t)
	s.CreateTable("users")
	sub := s.Watch("users")

	k := dbkey.String("k1")
	s.Insert("users", k, bplustree.Record{"a": 1})

	ev := <-sub
	if ev.Op != "insert" || ev.Key != keyCacheID(k) {
		t.Fatalf("got %+v", ev)
	}
}

func TestSaveAndReopenRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mydb_data")
	s, err := Open(dir, Options{Order: 3})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.CreateTable("users")
	s.Insert("users", dbkey.Number(1), bplustree.Record{"a": 1})
	s.Insert("users", dbkey.Number(2), bplustree.Record{"a": 2})
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := Open(dir, Options{Order: 3})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	entries, err := reopened.Scan("users")
	if err != nil || len(entries) != 2 {
		t.Fatalf("scan after reopen = %v, %v", entries, err)
	}
}

func TestScanNoSuchTable(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Scan("ghosts"); !errors.Is(err, dberrors.ErrNoSuchTable) {
		t.Fatalf("expected ErrNoSuchTable, got %v", err)
	}
}
