package bktree

import (
	"fmt"

	"github.com/ic-timon/bkindex/bktree/store"
)

// RenderF64B8 renders the tree into the compact packed layout: one 8-byte
// node array plus one 8-byte-per-key array, both in plain memory. It is
// the cheap way to hand a finished tree to another process or test without
// going through a file. Keys must encode to exactly 8 bytes.
func RenderF64B8[K, Q any](t *Tree[K, Q], enc KeyEncoder[K]) (nodes, keys []byte, err error) {
	if enc.Size() != store.F64B8KeySize {
		return nil, nil, fmt.Errorf("%w: F64B8 requires %d-byte keys, encoder has %d", store.ErrFormat, store.F64B8KeySize, enc.Size())
	}
	count := t.Len()
	nodes = make([]byte, count*store.F64B8NodeSize)
	keys = make([]byte, count*store.F64B8KeySize)

	root := t.Root()
	if root == nil {
		return nodes, keys, nil
	}
	next := 1
	stack := []renderEntry[K]{{index: 0, dist: 0, node: root}}
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := entry.node.Children()
		if err != nil {
			return nil, nil, err
		}
		base := 0
		if len(children) > 0 {
			base = next
			next += len(children)
		}

		n := store.F64B8{Nodes: nodes, Keys: keys, Index: entry.index}
		n.SetDistance(int(entry.dist))
		n.SetChildCount(len(children))
		n.SetChildOffset(base)
		enc.Put(keys[entry.index*store.F64B8KeySize:(entry.index+1)*store.F64B8KeySize], entry.node.Key())

		for i, c := range children {
			stack = append(stack, renderEntry[K]{index: base + i, dist: c.Dist, node: c.Node})
		}
	}
	return nodes, keys, nil
}

// CompactTree answers queries over the packed F64B8 arrays without any
// file behind them.
type CompactTree struct {
	cfg   *FileConfig
	nodes []byte
	keys  []byte
}

// NewCompactTree wraps packed arrays produced by RenderF64B8. cfg may be
// nil for defaults; VerifyChecksum is meaningless here and ignored.
func NewCompactTree(nodes, keys []byte, cfg *FileConfig) *CompactTree {
	return &CompactTree{cfg: cfg.OrDefault(), nodes: nodes, keys: keys}
}

// Len returns the number of packed nodes.
func (ct *CompactTree) Len() int { return len(ct.nodes) / store.F64B8NodeSize }

type compactQuery struct {
	ct    *CompactTree
	stash map[int]*compactNode
}

func (q *compactQuery) node(index int) (*compactNode, error) {
	if n, ok := q.stash[index]; ok {
		return n, nil
	}
	view := store.F64B8{Nodes: q.ct.nodes, Keys: q.ct.keys, Index: index}
	key, ok := view.KeyU64()
	if !ok {
		return nil, fmt.Errorf("%w: node %d key out of range", store.ErrFormat, index)
	}
	n := &compactNode{q: q, index: index, key: key}
	q.stash[index] = n
	return n, nil
}

type compactNode struct {
	q     *compactQuery
	index int
	key   uint64
}

func (n *compactNode) view() store.F64B8 {
	return store.F64B8{Nodes: n.q.ct.nodes, Keys: n.q.ct.keys, Index: n.index}
}

func (n *compactNode) Key() uint64 { return n.key }

func (n *compactNode) HasChildAt(d Dist) bool {
	node, ok := n.ChildAt(d)
	return ok && node != nil
}

func (n *compactNode) ChildAt(d Dist) (Node[uint64], bool) {
	children, err := n.Children()
	if err != nil {
		return nil, false
	}
	for _, c := range children {
		if c.Dist == d {
			return c.Node, true
		}
	}
	return nil, false
}

func (n *compactNode) Children() ([]Child[uint64], error) {
	view := n.view()
	base, ok := view.ChildOffset()
	if !ok {
		return nil, fmt.Errorf("%w: node %d truncated", store.ErrFormat, n.index)
	}
	if base == 0 {
		return nil, nil
	}
	count, ok := view.ChildCount()
	if !ok {
		return nil, fmt.Errorf("%w: node %d truncated", store.ErrFormat, n.index)
	}
	out := make([]Child[uint64], 0, count)
	for i := 0; i < count; i++ {
		child, err := n.q.node(base + i)
		if err != nil {
			return nil, err
		}
		d, ok := child.view().Distance()
		if !ok {
			return nil, fmt.Errorf("%w: node %d truncated", store.ErrFormat, base+i)
		}
		out = append(out, Child[uint64]{Dist: Dist(d), Node: child})
	}
	return out, nil
}

// FindEach calls fn with every key within tolerance of needle.
func (ct *CompactTree) FindEach(needle uint64, tolerance Dist, fn func(Dist, uint64)) error {
	if ct.Len() == 0 {
		return nil
	}
	q := &compactQuery{ct: ct, stash: make(map[int]*compactNode)}
	root, err := q.node(0)
	if err != nil {
		return err
	}
	return findEach[uint64, uint64](root, U64Key{}, ct.cfg.Metric, ct.cfg.StackHint, needle, tolerance, fn)
}

// Find returns every key within tolerance of needle.
func (ct *CompactTree) Find(needle uint64, tolerance Dist) ([]Result[uint64], error) {
	var out []Result[uint64]
	err := ct.FindEach(needle, tolerance, func(d Dist, k uint64) {
		out = append(out, Result[uint64]{Dist: d, Key: k})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
