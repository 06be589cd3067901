// Package bplustree implements an in-memory B+Tree ordered index: point
// lookup, insert/update/delete with full rebalancing, and an ordered scan
// over the linked leaf chain.
//
// The splitting and merging policy follows the classic top-down,
// preemptive-split/rebalance discipline (split or merge a child before
// descending into it, never after), parameterized by an order t: a node is
// full at 2t-1 keys and a non-root node must never drop below t-1 keys.
package bplustree

import (
	"fmt"

	"plusdb/dberrors"
	"plusdb/dbkey"
)

// Tree is an ordered index over one table. The zero value is not usable;
// construct with New.
type Tree struct {
	root  node
	order int

	keyKind dbkey.Kind
	size    int
}

// New creates an empty tree of the given order (minimum degree). Orders
// below 2 are not meaningful for a B+Tree and are rounded up.
func New(order int) *Tree {
	if order < 2 {
		order = 2
	}
	return &Tree{
		root:  &leafNode{},
		order: order,
	}
}

// Order returns the tree's order parameter t.
func (t *Tree) Order() int { return t.order }

// Len returns the number of records currently stored.
func (t *Tree) Len() int { return t.size }

// lockKind fixes the tree's key kind to that of the first key ever presented
// to it, and rejects any later key of a different kind.
func (t *Tree) lockKind(k dbkey.Key) error {
	if t.keyKind == dbkey.KindUnset {
		t.keyKind = k.Kind()
		return nil
	}
	if t.keyKind != k.Kind() {
		return fmt.Errorf("bplustree: tree holds %s keys, got %s key: %w", t.keyKind, k.Kind(), dberrors.ErrKeyKindMismatch)
	}
	return nil
}

// childIndex returns the smallest index i such that k < keys[i], or
// len(keys) if no such index exists — the standard B+Tree descent rule used
// by search, insert and delete alike.
func childIndex(keys []dbkey.Key, k dbkey.Key) int {
	i := 0
	for i < len(keys) && k.Compare(keys[i]) >= 0 {
		i++
	}
	return i
}

// Search returns the value stored for k, if any. A key of a different kind
// than the tree's locked kind is never present.
func (t *Tree) Search(k dbkey.Key) (Record, bool) {
	if t.keyKind != dbkey.KindUnset && k.Kind() != t.keyKind {
		return nil, false
	}
	leaf := t.findLeaf(k)
	for i, kk := range leaf.keys {
		if kk.Equal(k) {
			return leaf.values[i], true
		}
	}
	return nil, false
}

func (t *Tree) findLeaf(k dbkey.Key) *leafNode {
	n := t.root
	for {
		in, ok := n.(*internalNode)
		if !ok {
			return n.(*leafNode)
		}
		n = in.children[childIndex(in.keys, k)]
	}
}

func (t *Tree) isFull(n node) bool {
	return n.numKeys() == 2*t.order-1
}

// Insert adds or overwrites the record at key k. The tree itself never
// rejects a repeated key (that uniqueness policy belongs to the catalog
// layer); it always leaves k mapped to v.
func (t *Tree) Insert(k dbkey.Key, v Record) error {
	if err := t.lockKind(k); err != nil {
		return err
	}

	if t.isFull(t.root) {
		oldRoot := t.root
		newRoot := &internalNode{children: []node{oldRoot}}
		t.splitChild(newRoot, 0)
		t.root = newRoot
	}

	if t.insertNonFull(t.root, k, v) {
		t.size++
	}
	return nil
}

// splitChild splits the full child at index i of parent, per §4.2: the
// internal case pushes the middle key up and hands the right half of keys
// and children to a new sibling; the leaf case copies (not moves) the
// middle key up, since a B+Tree retains every key in a leaf, and relinks the
// sibling chain.
func (t *Tree) splitChild(parent *internalNode, i int) {
	mid := t.order - 1
	child := parent.children[i]

	var sibling node
	var upKey dbkey.Key

	switch c := child.(type) {
	case *internalNode:
		upKey = c.keys[mid]
		s := &internalNode{
			keys:     append([]dbkey.Key{}, c.keys[mid+1:]...),
			children: append([]node{}, c.children[mid+1:]...),
		}
		c.keys = c.keys[:mid]
		c.children = c.children[:mid+1]
		sibling = s
	case *leafNode:
		upKey = c.keys[mid]
		s := &leafNode{
			keys:   append([]dbkey.Key{}, c.keys[mid:]...),
			values: append([]Record{}, c.values[mid:]...),
			next:   c.next,
		}
		c.keys = c.keys[:mid]
		c.values = c.values[:mid]
		c.next = s
		sibling = s
	}

	parent.keys = insertKey(parent.keys, i, upKey)
	parent.children = insertChild(parent.children, i+1, sibling)
}

func insertKey(keys []dbkey.Key, i int, k dbkey.Key) []dbkey.Key {
	keys = append(keys, dbkey.Key{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	return keys
}

func insertChild(children []node, i int, c node) []node {
	children = append(children, nil)
	copy(children[i+1:], children[i:])
	children[i] = c
	return children
}

func insertRecord(values []Record, i int, v Record) []Record {
	values = append(values, nil)
	copy(values[i+1:], values[i:])
	values[i] = v
	return values
}

// insertNonFull descends into n (guaranteed not full) inserting or
// overwriting k. It reports whether a new record was created (true) as
// opposed to an existing one overwritten (false).
func (t *Tree) insertNonFull(n node, k dbkey.Key, v Record) bool {
	switch x := n.(type) {
	case *leafNode:
		i := 0
		for i < len(x.keys) && x.keys[i].Compare(k) < 0 {
			i++
		}
		if i < len(x.keys) && x.keys[i].Equal(k) {
			x.values[i] = v
			return false
		}
		x.keys = insertKey(x.keys, i, k)
		x.values = insertRecord(x.values, i, v)
		return true
	case *internalNode:
		i := childIndex(x.keys, k)
		if t.isFull(x.children[i]) {
			t.splitChild(x, i)
			if k.Compare(x.keys[i]) >= 0 {
				i++
			}
		}
		return t.insertNonFull(x.children[i], k, v)
	}
	panic("bplustree: unreachable node variant")
}

// Update overwrites the value for an existing key and reports whether the
// key was present.
func (t *Tree) Update(k dbkey.Key, v Record) bool {
	leaf := t.findLeaf(k)
	for i, kk := range leaf.keys {
		if kk.Equal(k) {
			leaf.values[i] = v
			return true
		}
	}
	return false
}

// Delete removes the record at key k, rebalancing along the path as needed,
// and reports whether the key was present.
func (t *Tree) Delete(k dbkey.Key) bool {
	deleted := t.delete(t.root, k)
	if deleted {
		t.size--
	}
	if in, ok := t.root.(*internalNode); ok && len(in.keys) == 0 {
		t.root = in.children[0]
	}
	return deleted
}

func (t *Tree) delete(n node, k dbkey.Key) bool {
	switch x := n.(type) {
	case *leafNode:
		for i, kk := range x.keys {
			if kk.Equal(k) {
				x.keys = append(x.keys[:i], x.keys[i+1:]...)
				x.values = append(x.values[:i], x.values[i+1:]...)
				return true
			}
		}
		return false
	case *internalNode:
		i := childIndex(x.keys, k)
		if x.children[i].numKeys() < t.order {
			i = t.rebalanceChild(x, i)
		}
		deleted := t.delete(x.children[i], k)
		if deleted && i > 0 {
			if fk, ok := firstKey(x.children[i]); ok {
				x.keys[i-1] = fk
			}
		}
		return deleted
	}
	panic("bplustree: unreachable node variant")
}

// rebalanceChild restores the t-key minimum on parent.children[i] before a
// descent, preferring to borrow from the left sibling, then the right
// sibling, then merging — with the left sibling when one exists, else the
// right. It returns the index of the child to descend into, which shifts to
// i-1 when the child was absorbed into its left sibling.
func (t *Tree) rebalanceChild(parent *internalNode, i int) int {
	if i > 0 && parent.children[i-1].numKeys() >= t.order {
		t.borrowFromPrev(parent, i)
		return i
	}
	if i < len(parent.children)-1 && parent.children[i+1].numKeys() >= t.order {
		t.borrowFromNext(parent, i)
		return i
	}
	if i > 0 {
		t.mergeChildren(parent, i-1)
		return i - 1
	}
	t.mergeChildren(parent, i)
	return i
}

func (t *Tree) borrowFromPrev(parent *internalNode, i int) {
	switch c := parent.children[i].(type) {
	case *internalNode:
		sib := parent.children[i-1].(*internalNode)
		last := len(sib.keys) - 1
		borrowedKey := sib.keys[last]
		borrowedChild := sib.children[len(sib.children)-1]
		sib.keys = sib.keys[:last]
		sib.children = sib.children[:len(sib.children)-1]

		c.keys = insertKey(c.keys, 0, parent.keys[i-1])
		c.children = insertChild(c.children, 0, borrowedChild)
		parent.keys[i-1] = borrowedKey
	case *leafNode:
		sib := parent.children[i-1].(*leafNode)
		last := len(sib.keys) - 1
		borrowedKey := sib.keys[last]
		borrowedVal := sib.values[last]
		sib.keys = sib.keys[:last]
		sib.values = sib.values[:last]

		c.keys = insertKey(c.keys, 0, borrowedKey)
		c.values = insertRecord(c.values, 0, borrowedVal)
		parent.keys[i-1] = c.keys[0]
	}
}

func (t *Tree) borrowFromNext(parent *internalNode, i int) {
	switch c := parent.children[i].(type) {
	case *internalNode:
		sib := parent.children[i+1].(*internalNode)
		borrowedKey := sib.keys[0]
		borrowedChild := sib.children[0]
		sib.keys = sib.keys[1:]
		sib.children = sib.children[1:]

		c.keys = append(c.keys, parent.keys[i])
		c.children = append(c.children, borrowedChild)
		parent.keys[i] = borrowedKey
	case *leafNode:
		sib := parent.children[i+1].(*leafNode)
		borrowedKey := sib.keys[0]
		borrowedVal := sib.values[0]
		sib.keys = sib.keys[1:]
		sib.values = sib.values[1:]

		c.keys = append(c.keys, borrowedKey)
		c.values = append(c.values, borrowedVal)
		if len(sib.keys) > 0 {
			parent.keys[i] = sib.keys[0]
		} else {
			parent.keys[i] = borrowedKey
		}
	}
}

// mergeChildren folds parent.children[i+1] into parent.children[i] around
// separator parent.keys[i], then removes that separator and the now-empty
// right child pointer from parent.
func (t *Tree) mergeChildren(parent *internalNode, i int) {
	switch l := parent.children[i].(type) {
	case *internalNode:
		r := parent.children[i+1].(*internalNode)
		l.keys = append(l.keys, parent.keys[i])
		l.keys = append(l.keys, r.keys...)
		l.children = append(l.children, r.children...)
	case *leafNode:
		r := parent.children[i+1].(*leafNode)
		l.keys = append(l.keys, r.keys...)
		l.values = append(l.values, r.values...)
		l.next = r.next
	}
	parent.keys = append(parent.keys[:i], parent.keys[i+1:]...)
	parent.children = append(parent.children[:i+1], parent.children[i+2:]...)
}

// All returns a single-pass iterator over every (key, value) pair in
// strictly increasing key order, following the leaf sibling chain. Re-call
// All to scan again; the returned iterator is not restartable.
func (t *Tree) All() func(yield func(dbkey.Key, Record) bool) {
	return func(yield func(dbkey.Key, Record) bool) {
		leaf := leftmostLeaf(t.root)
		for leaf != nil {
			for i, k := range leaf.keys {
				if !yield(k, leaf.values[i]) {
					return
				}
			}
			leaf = leaf.next
		}
	}
}
