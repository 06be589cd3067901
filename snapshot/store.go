package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"crypto/rand"

	"plusdb/bplustree"
	"plusdb/catalog"
	"plusdb/dberrors"
)

const tableFileSuffix = ".db"

// Store binds a catalog to a directory on disk. Save writes every table to
// <dir>/<table>.db; Load reads that same directory back if it already
// exists, or starts empty if it doesn't.
type Store struct {
	dir           string
	order         int
	encryptionKey []byte // optional; nil means snapshots are written in the clear (CRC32-checked)
}

// DirName derives the stable snapshot directory name for a store, per §6:
// the store's own name with a fixed "_data" suffix.
func DirName(storeName string) string {
	return storeName + "_data"
}

// NewStore returns a Store bound to dir; it touches nothing on disk until
// Load or Save is called. encryptionKey
// may be nil; if set it must be chacha20poly1305.KeySize (32) bytes and is
// used to seal every table file written by Save.
func NewStore(dir string, order int, encryptionKey []byte) *Store {
	return &Store{dir: dir, order: order, encryptionKey: encryptionKey}
}

// Load reads every "<name>.db" file in the store's directory into a fresh
// catalog. A missing directory yields an empty catalog, not an error. A
// malformed file aborts the whole load and is surfaced as ErrIOFailure —
// the caller's in-memory catalog is authoritative only after a successful
// Load, so a partial, corrupt load is never installed.
func (s *Store) Load() (*catalog.Catalog, error) {
	cat := catalog.New(s.order)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return nil, fmt.Errorf("snapshot: reading %s: %w", s.dir, dberrors.ErrIOFailure)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tableFileSuffix) {
			continue
		}
		tableName := strings.TrimSuffix(entry.Name(), tableFileSuffix)
		tree, err := s.loadTableFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		cat.Register(tableName, tree)
	}
	return cat, nil
}

func (s *Store) loadTableFile(path string) (*bplustree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: opening %s: %w", path, dberrors.ErrIOFailure)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, dberrors.ErrIOFailure)
	}

	order, w, err := decodeFile(data, s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", path, err)
	}
	return decodeTree(order, w)
}

// Save ensures the store directory exists, then writes every table in cat to
// its own file. Each file is written in full before the next is opened
// (scoped open/write/close, per the resource model); an error on any table
// aborts the save and the on-disk snapshot should be treated as stale.
func (s *Store) Save(cat *catalog.Catalog) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: creating %s: %w", s.dir, dberrors.ErrIOFailure)
	}

	for _, name := range cat.TableNames() {
		tree, err := cat.Table(name)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if err := s.saveTableFile(name, tree); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveTableFile(name string, tree *bplustree.Tree) error {
	w, encErr := encodeTree(tree)
	if encErr != nil {
		return fmt.Errorf("snapshot: %w: %v", dberrors.ErrIOFailure, encErr)
	}

	var nonce []byte
	if s.encryptionKey != nil {
		nonce = make([]byte, nonceSize)
		if _, rerr := rand.Read(nonce); rerr != nil {
			return fmt.Errorf("snapshot: generating nonce: %w", dberrors.ErrIOFailure)
		}
	}

	data, encErr := encodeFile(tree.Order(), w, s.encryptionKey, nonce)
	if encErr != nil {
		return fmt.Errorf("snapshot: %w", encErr)
	}

	path := filepath.Join(s.dir, name+tableFileSuffix)
	tmp := path + ".tmp"

	f, createErr := os.Create(tmp)
	if createErr != nil {
		return fmt.Errorf("snapshot: creating %s: %w", tmp, dberrors.ErrIOFailure)
	}

	writeErr := writeAndSync(f, data)
	closeErr := f.Close()
	switch {
	case writeErr != nil:
		return writeErr
	case closeErr != nil:
		return fmt.Errorf("snapshot: closing %s: %w", tmp, dberrors.ErrIOFailure)
	}

	// Rename only after the temp file is fully flushed and closed, so a
	// reader never observes a half-written file under the final name.
	if rerr := os.Rename(tmp, path); rerr != nil {
		return fmt.Errorf("snapshot: renaming %s: %w", tmp, dberrors.ErrIOFailure)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("snapshot: writing %s: %w", f.Name(), dberrors.ErrIOFailure)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("snapshot: syncing %s: %w", f.Name(), dberrors.ErrIOFailure)
	}
	return nil
}
