package snapshot

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"plusdb/bplustree"
	"plusdb/dberrors"
	"plusdb/dbkey"
)

func TestRoundTripPlaintext(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "mydb_data"), 3, nil)

	cat, err := store.Load()
	if err != nil {
		t.Fatalf("initial load: %v", err)
	}
	if err := cat.CreateTable("users"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	perm := rng.Perm(100)
	for _, i := range perm {
		if err := cat.Insert("users", dbkey.Number(float64(i)), bplustree.Record{"n": i}); err != nil {
			t.Fatalf("insert(%d): %v", i, err)
		}
	}

	if err := store.Save(cat); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened := NewStore(filepath.Join(dir, "mydb_data"), 3, nil)
	loaded, err := reopened.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	entries, err := loaded.Scan("users")
	if err != nil {
		t.Fatalf("scan after reload: %v", err)
	}
	if len(entries) != 100 {
		t.Fatalf("scan length = %d, want 100", len(entries))
	}
	for i, e := range entries {
		if int(e.Key.AsNumber()) != i {
			t.Fatalf("entry[%d].Key = %v, want %d", i, e.Key.AsNumber(), i)
		}
		if int(e.Value["n"].(float64)) != i {
			t.Fatalf("entry[%d].Value = %v, want n=%d", i, e.Value, i)
		}
	}
}

func TestRoundTripEncrypted(t *testing.T) {
	dir := t.TempDir()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	store := NewStore(dir, 3, key)
	cat, _ := store.Load()
	cat.CreateTable("secrets")
	cat.Insert("secrets", dbkey.String("k1"), bplustree.Record{"a": 1})

	if err := store.Save(cat); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened := NewStore(dir, 3, key)
	loaded, err := reopened.Load()
	if err != nil {
		t.Fatalf("reload with correct key: %v", err)
	}
	v, err := loaded.Read("secrets", dbkey.String("k1"))
	if err != nil || v["a"].(float64) != 1 {
		t.Fatalf("read after reload = %v, %v", v, err)
	}

	wrongKeyStore := NewStore(dir, 3, make([]byte, 32))
	if _, err := wrongKeyStore.Load(); err == nil {
		t.Fatal("expected load failure with wrong key")
	}
}

func TestLoadMissingDirectoryIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does_not_exist"), 3, nil)
	cat, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.TableNames()) != 0 {
		t.Fatalf("expected empty catalog, got %v", cat.TableNames())
	}
}

func TestLoadMalformedFileIsIOFailure(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.db"), []byte("not a snapshot"), 0o644); err != nil {
		t.Fatalf("writing garbage file: %v", err)
	}
	store := NewStore(dir, 3, nil)
	if _, err := store.Load(); !errors.Is(err, dberrors.ErrIOFailure) {
		t.Fatalf("expected io_failure loading a malformed file, got %v", err)
	}
}
