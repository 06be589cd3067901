package bplustree

import "plusdb/dbkey"

// Record is the opaque value payload stored at each leaf entry: a JSON-shaped
// mapping from field name to scalar, array or nested map.
type Record = map[string]any

// node is the tagged-variant interface implemented by *leafNode and
// *internalNode. Carrying only the fields each variant needs (rather than a
// single struct with both children and values, as the original source did)
// lets the shape invariants — |children| = |keys|+1 for internal nodes,
// |values| = |keys| for leaves — hold by construction instead of by
// convention.
type node interface {
	numKeys() int
}

// leafNode holds records directly. next is a non-owning traversal pointer:
// it is never followed to free or reparent a node, only to walk the chain in
// key order.
type leafNode struct {
	keys   []dbkey.Key
	values []Record
	next   *leafNode
}

// internalNode holds separator keys only; children[i] holds every key in
// [keys[i-1], keys[i]) (with keys[-1] = -inf, keys[len(keys)] = +inf).
type internalNode struct {
	keys     []dbkey.Key
	children []node
}

func (l *leafNode) numKeys() int     { return len(l.keys) }
func (n *internalNode) numKeys() int { return len(n.keys) }

// firstKey returns the smallest key reachable under n, descending to the
// leftmost leaf. ok is false only for a wholly empty tree.
func firstKey(n node) (dbkey.Key, bool) {
	for {
		switch x := n.(type) {
		case *leafNode:
			if len(x.keys) == 0 {
				return dbkey.Key{}, false
			}
			return x.keys[0], true
		case *internalNode:
			if len(x.children) == 0 {
				return dbkey.Key{}, false
			}
			n = x.children[0]
		default:
			return dbkey.Key{}, false
		}
	}
}

// leftmostLeaf descends from n following child 0 until it reaches a leaf.
func leftmostLeaf(n node) *leafNode {
	for {
		switch x := n.(type) {
		case *leafNode:
			return x
		case *internalNode:
			n = x.children[0]
		}
	}
}

