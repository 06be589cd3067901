package catalog

import (
	"errors"
	"testing"

	"plusdb/bplustree"
	"plusdb/dbkey"
	"plusdb/dberrors"
)

func TestCreateTableAlreadyExists(t *testing.T) {
	c := New(3)
	if err := c.CreateTable("users"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.CreateTable("users"); !errors.Is(err, dberrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestInsertNoSuchTable(t *testing.T) {
	c := New(3)
	err := c.Insert("ghosts", dbkey.String("k1"), bplustree.Record{"a": 1})
	if !errors.Is(err, dberrors.ErrNoSuchTable) {
		t.Fatalf("expected ErrNoSuchTable, got %v", err)
	}
}

func TestDuplicateInsertRejected(t *testing.T) {
	c := New(3)
	c.CreateTable("users")
	k := dbkey.String("k1")
	if err := c.Insert("users", k, bplustree.Record{"a": 1}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := c.Insert("users", k, bplustree.Record{"a": 2})
	if !errors.Is(err, dberrors.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	v, err := c.Read("users", k)
	if err != nil || v["a"] != 1 {
		t.Fatalf("read after rejected duplicate = %v, %v, want a=1", v, err)
	}
}

func TestUpdateReadDeleteMissingKey(t *testing.T) {
	c := New(3)
	c.CreateTable("users")
	k := dbkey.String("missing")

	if err := c.Update("users", k, bplustree.Record{"a": 1}); !errors.Is(err, dberrors.ErrNoSuchKey) {
		t.Fatalf("update: expected ErrNoSuchKey, got %v", err)
	}
	if _, err := c.Read("users", k); !errors.Is(err, dberrors.ErrNoSuchKey) {
		t.Fatalf("read: expected ErrNoSuchKey, got %v", err)
	}
	if err := c.Delete("users", k); !errors.Is(err, dberrors.ErrNoSuchKey) {
		t.Fatalf("delete: expected ErrNoSuchKey, got %v", err)
	}
}

func TestScanOrdering(t *testing.T) {
	c := New(3)
	c.CreateTable("users")
	for _, k := range []float64{10, 20, 5, 6, 12, 30, 7, 17} {
		c.Insert("users", dbkey.Number(k), bplustree.Record{"v": k})
	}
	entries, err := c.Scan("users")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []float64{5, 6, 7, 10, 12, 17, 20, 30}
	if len(entries) != len(want) {
		t.Fatalf("scan length = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Key.AsNumber() != want[i] {
			t.Fatalf("entry[%d] = %v, want %v", i, e.Key.AsNumber(), want[i])
		}
	}
}

func TestFullRecordLifecycle(t *testing.T) {
	c := New(3)
	c.CreateTable("users")
	k := dbkey.String("k1")

	c.Insert("users", k, bplustree.Record{"a": 1})
	c.Update("users", k, bplustree.Record{"a": 2, "b": 3})

	v, err := c.Read("users", k)
	if err != nil || v["a"] != 2 || v["b"] != 3 {
		t.Fatalf("read = %v, %v", v, err)
	}

	if err := c.Insert("users", k, bplustree.Record{"a": 9}); !errors.Is(err, dberrors.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on reinsert, got %v", err)
	}
}
