// Package bplustree implements a B+Tree, the ordered index that backs every
// table in the storage engine.
//
// Unlike a plain B-tree, every record lives in a leaf; internal nodes hold
// separator keys only, used purely to route a search to the right leaf.
// Leaves are linked in key order so an ordered scan never has to re-descend
// the tree.
//
// Example usage:
//
//	tree := bplustree.New(3)
//	tree.Insert(dbkey.String("k1"), bplustree.Record{"a": 1})
//	if v, ok := tree.Search(dbkey.String("k1")); ok {
//		fmt.Println(v)
//	}
//	for k, v := range tree.All() {
//		fmt.Println(k, v)
//	}
package bplustree
