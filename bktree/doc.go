// Package bktree implements a Burkhard-Keller tree: an index over a metric
// space that finds all keys within a tolerance of a query by visiting only
// the subtrees the triangle inequality cannot rule out.
//
// Quick start:
//
//	tree := bktree.New[uint64, uint64](bktree.U64Key{}, bktree.HammingMetric{})
//	tree.Add(0xdeadbeef)
//	results := tree.Find(0xdeadbeef, 2)
//
// A tree can be persisted with WriteFile and later queried in place from
// the memory-mapped file via OpenFile, without loading it into RAM.
package bktree
