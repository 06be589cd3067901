// Package service implements the thin facade described for the storage
// engine: create_table, insert, update, read, delete, scan, save. The core
// catalog and trees assume single-threaded access; Store supplies the
// reader/writer lock a multi-threaded caller (the HTTP surface, the CLI)
// needs around it, plus an optional read-through record cache and a
// mutation notification hub.
package service

import (
	"fmt"
	"sync"

	"plusdb/bplustree"
	"plusdb/cache"
	"plusdb/catalog"
	"plusdb/dbkey"
	"plusdb/dberrors"
	"plusdb/notify"
	"plusdb/snapshot"
)

// Store is a single named database: a catalog of tables, backed by a
// snapshot directory, guarded by one reader/writer lock. Concurrent reads
// (Read/Scan) proceed together; Insert/Update/Delete/Save take the
// exclusive lock, matching the "read/write lock suffices" concurrency
// model — searches are only safe to run concurrently with each other, never
// with a writer.
type Store struct {
	mu    sync.RWMutex
	cat   *catalog.Catalog
	snaps *snapshot.Store
	cache *cache.RecordCache
	hub   *notify.Hub
}

// Options configures a new Store.
type Options struct {
	Order         int    // B+Tree order for newly created tables
	EncryptionKey []byte // optional; nil disables at-rest encryption
	CacheSize     int    // optional; 0 disables the record cache
}

// Open loads (or initializes) the store rooted at dir, per opts.
func Open(dir string, opts Options) (*Store, error) {
	snaps := snapshot.NewStore(dir, opts.Order, opts.EncryptionKey)
	cat, err := snaps.Load()
	if err != nil {
		return nil, err
	}

	var c *cache.RecordCache
	if opts.CacheSize > 0 {
		c = cache.New(opts.CacheSize)
	}

	return &Store{
		cat:   cat,
		snaps: snaps,
		cache: c,
		hub:   notify.NewHub(),
	}, nil
}

// CreateTable registers a new, empty table.
func (s *Store) CreateTable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.CreateTable(name)
}

// Insert adds (k, v) to table. v must be a non-nil structured map, the
// "invalid_value" shape check the spec places at the facade rather than
// inside the tree.
func (s *Store) Insert(table string, k dbkey.Key, v bplustree.Record) error {
	if err := validateValue(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cat.Insert(table, k, v); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Put(table, keyCacheID(k), v)
	}
	s.hub.Publish(notify.Event{Table: table, Op: notify.OpInsert, Key: keyCacheID(k)})
	return nil
}

// Update overwrites the value at k in table.
func (s *Store) Update(table string, k dbkey.Key, v bplustree.Record) error {
	if err := validateValue(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cat.Update(table, k, v); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Put(table, keyCacheID(k), v)
	}
	s.hub.Publish(notify.Event{Table: table, Op: notify.OpUpdate, Key: keyCacheID(k)})
	return nil
}

// Read returns the value at k in table, consulting the record cache first
// when one is configured.
func (s *Store) Read(table string, k dbkey.Key) (bplustree.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil {
		if v, ok := s.cache.Get(table, keyCacheID(k)); ok {
			return v, nil
		}
	}
	v, err := s.cat.Read(table, k)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(table, keyCacheID(k), v)
	}
	return v, nil
}

// Delete removes k from table.
func (s *Store) Delete(table string, k dbkey.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cat.Delete(table, k); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(table, keyCacheID(k))
	}
	s.hub.Publish(notify.Event{Table: table, Op: notify.OpDelete, Key: keyCacheID(k)})
	return nil
}

// Scan returns every record in table in ascending key order. It holds only
// the read lock, so concurrent scans (and reads) may proceed together, but
// never alongside a writer.
func (s *Store) Scan(table string) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.Scan(table)
}

// Save writes every table to the snapshot directory. An io_failure leaves
// the on-disk snapshot in an indeterminate, stale state; the caller should
// retry rather than assume partial success.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps.Save(s.cat)
}

// Watch registers a new subscriber for table mutation events.
func (s *Store) Watch(table string) notify.Subscriber {
	return s.hub.Watch(table)
}

// Unwatch removes a subscriber previously returned by Watch.
func (s *Store) Unwatch(table string, sub notify.Subscriber) {
	s.hub.Unwatch(table, sub)
}

// TableNames returns the registered table names in sorted order.
func (s *Store) TableNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat.TableNames()
}

func validateValue(v bplustree.Record) error {
	if v == nil {
		return fmt.Errorf("value must be a non-nil structured map: %w", dberrors.ErrInvalidValue)
	}
	return nil
}

// keyCacheID renders a dbkey.Key as a stable string for cache and
// notification bookkeeping, where only string identity (not ordering)
// matters.
func keyCacheID(k dbkey.Key) string {
	switch k.Kind() {
	case dbkey.KindString:
		return "s:" + k.AsString()
	case dbkey.KindNumber:
		return fmt.Sprintf("n:%v", k.AsNumber())
	default:
		return "unset"
	}
}
