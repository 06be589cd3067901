// Package catalog implements the named collection of B+Tree tables that
// backs a store: table creation, per-table CRUD with uniqueness enforcement
// on insert, and ordered scan.
package catalog

import (
	"fmt"
	"sort"

	"plusdb/bplustree"
	"plusdb/dbkey"
	"plusdb/dberrors"
)

// Catalog maps table names to their trees. It is not safe for concurrent
// use by multiple goroutines without an external reader/writer lock — see
// the Store facade in package service, which supplies one.
type Catalog struct {
	order  int
	tables map[string]*bplustree.Tree
}

// New creates an empty catalog whose tables are built with the given order.
func New(order int) *Catalog {
	return &Catalog{
		order:  order,
		tables: make(map[string]*bplustree.Tree),
	}
}

// CreateTable registers a new, empty table. It fails with ErrAlreadyExists
// if the name is taken.
func (c *Catalog) CreateTable(name string) error {
	if _, exists := c.tables[name]; exists {
		return fmt.Errorf("table %q: %w", name, dberrors.ErrAlreadyExists)
	}
	c.tables[name] = bplustree.New(c.order)
	return nil
}

// TableNames returns the registered table names in sorted order, for
// deterministic iteration (snapshot save, listing endpoints).
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the tree for name, or ErrNoSuchTable.
func (c *Catalog) Table(name string) (*bplustree.Tree, error) {
	tree, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, dberrors.ErrNoSuchTable)
	}
	return tree, nil
}

// Register installs an already-built tree under name, overwriting any
// previous entry. Used by the persistence layer when reloading a snapshot.
func (c *Catalog) Register(name string, tree *bplustree.Tree) {
	c.tables[name] = tree
}

// Insert adds (k, v) to table, rejecting the operation if the key is
// already present — the tree is searched first so the uniqueness check and
// the write happen as one logical step from the caller's perspective.
func (c *Catalog) Insert(table string, k dbkey.Key, v bplustree.Record) error {
	tree, err := c.Table(table)
	if err != nil {
		return err
	}
	if _, exists := tree.Search(k); exists {
		return fmt.Errorf("key %v in table %q: %w", k, table, dberrors.ErrDuplicateKey)
	}
	return tree.Insert(k, v)
}

// Update overwrites the value at k in table.
func (c *Catalog) Update(table string, k dbkey.Key, v bplustree.Record) error {
	tree, err := c.Table(table)
	if err != nil {
		return err
	}
	if !tree.Update(k, v) {
		return fmt.Errorf("key %v in table %q: %w", k, table, dberrors.ErrNoSuchKey)
	}
	return nil
}

// Read returns the value at k in table.
func (c *Catalog) Read(table string, k dbkey.Key) (bplustree.Record, error) {
	tree, err := c.Table(table)
	if err != nil {
		return nil, err
	}
	v, ok := tree.Search(k)
	if !ok {
		return nil, fmt.Errorf("key %v in table %q: %w", k, table, dberrors.ErrNoSuchKey)
	}
	return v, nil
}

// Delete removes k from table.
func (c *Catalog) Delete(table string, k dbkey.Key) error {
	tree, err := c.Table(table)
	if err != nil {
		return err
	}
	if !tree.Delete(k) {
		return fmt.Errorf("key %v in table %q: %w", k, table, dberrors.ErrNoSuchKey)
	}
	return nil
}

// Entry is one (key, value) pair yielded by Scan.
type Entry struct {
	Key   dbkey.Key
	Value bplustree.Record
}

// Scan returns every record in table in ascending key order.
func (c *Catalog) Scan(table string) ([]Entry, error) {
	tree, err := c.Table(table)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for k, v := range tree.All() {
		out = append(out, Entry{Key: k, Value: v})
	}
	return out, nil
}
