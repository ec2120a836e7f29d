package bktree

import (
	"encoding/binary"
	"fmt"

	"github.com/ic-timon/bkindex/bktree/store"
)

// FileTree answers queries directly against a memory-mapped index file.
// The file is immutable, so any number of independent FileTrees (or
// sequential queries on one) may read it; nothing here mutates the
// mapping. Only fixed 8-byte keys are supported.
type FileTree struct {
	cfg  *FileConfig
	file *store.File

	config    store.FixedKeysConfig
	dist      []byte
	child     []byte
	num       []byte
	key       []byte
	nodeCount int
}

// OpenFile maps an index file for querying. cfg may be nil for defaults.
func OpenFile(path string, cfg *FileConfig) (*FileTree, error) {
	cfg = cfg.OrDefault()
	f, err := store.OpenFile(path, cfg.VerifyChecksum)
	if err != nil {
		return nil, err
	}
	ft := &FileTree{cfg: cfg, file: f}
	if err := ft.resolveSections(); err != nil {
		f.Close()
		return nil, err
	}
	return ft, nil
}

func (ft *FileTree) resolveSections() error {
	descr := ft.file.Descriptor()
	config, err := descr.Config()
	if err != nil {
		return err
	}
	if config.Key != 8 {
		return fmt.Errorf("%w: unsupported key width %d (only 8-byte keys)", store.ErrFormat, config.Key)
	}
	ft.config = config
	ft.nodeCount = int(descr.NodeCount)

	for _, s := range []struct {
		section *store.FileSection
		width   int
		dst     *[]byte
	}{
		{descr.Sections.Dist, config.Dist, &ft.dist},
		{descr.Sections.Child, config.Child, &ft.child},
		{descr.Sections.Num, config.Num, &ft.num},
		{descr.Sections.Key, config.Key, &ft.key},
	} {
		buf, err := ft.file.Section(s.section)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrFormat, err)
		}
		if len(buf) < ft.nodeCount*s.width {
			return fmt.Errorf("%w: section holds %d bytes for %d nodes of %d", store.ErrFormat, len(buf), ft.nodeCount, s.width)
		}
		*s.dst = buf
	}
	return nil
}

// Len returns the number of nodes in the file.
func (ft *FileTree) Len() int { return ft.nodeCount }

// Descriptor returns the decoded file descriptor.
func (ft *FileTree) Descriptor() *store.FileDescr { return ft.file.Descriptor() }

// Close unmaps the file. All queries must be finished.
func (ft *FileTree) Close() error { return ft.file.Close() }

// fnode is a cheap offset-computing view; it copies nothing.
func (ft *FileTree) fnode(index int) store.FNode {
	return store.FNode{
		Config: ft.config,
		Index:  index,
		Dist:   ft.dist,
		Child:  ft.child,
		Num:    ft.num,
		Key:    ft.key,
	}
}

// fileQuery is the per-query state: a stash of materialized nodes keyed by
// index, so repeated visits to one index during a single traversal get the
// same stable *fileNode. It lives for exactly one query.
type fileQuery struct {
	ft    *FileTree
	stash map[int]*fileNode
}

func (ft *FileTree) newQuery() *fileQuery {
	return &fileQuery{ft: ft, stash: make(map[int]*fileNode)}
}

func (q *fileQuery) node(index int) (*fileNode, error) {
	if n, ok := q.stash[index]; ok {
		return n, nil
	}
	view := q.ft.fnode(index)
	kb, ok := view.KeyBytes()
	if !ok {
		return nil, fmt.Errorf("%w: node %d key out of range", store.ErrFormat, index)
	}
	n := &fileNode{q: q, index: index, key: binary.LittleEndian.Uint64(kb)}
	q.stash[index] = n
	return n, nil
}

// fileNode adapts one on-disk node to the Node interface.
type fileNode struct {
	q     *fileQuery
	index int
	key   uint64
}

func (n *fileNode) view() store.FNode { return n.q.ft.fnode(n.index) }

// Key implements Node.
func (n *fileNode) Key() uint64 { return n.key }

// HasChildAt implements Node.
func (n *fileNode) HasChildAt(d Dist) bool {
	node, ok := n.ChildAt(d)
	return ok && node != nil
}

// ChildAt implements Node.
func (n *fileNode) ChildAt(d Dist) (Node[uint64], bool) {
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

// Children implements Node. Children are the contiguous index range
// starting at the stored child offset; offset 0 means none. A short read
// here means the file lied about its shape, which is a format error.
func (n *fileNode) Children() ([]Child[uint64], error) {
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
	// The render pass stores children farthest slot first, so index order
	// already matches RAMNode.Children.
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

// FindEach calls fn with every key within tolerance of needle, running the
// shared search directly over the mapped sections.
func (ft *FileTree) FindEach(needle uint64, tolerance Dist, fn func(Dist, uint64)) error {
	if ft.nodeCount == 0 {
		return nil
	}
	q := ft.newQuery()
	root, err := q.node(0)
	if err != nil {
		return err
	}
	return findEach[uint64, uint64](root, U64Key{}, ft.cfg.Metric, ft.cfg.StackHint, needle, tolerance, fn)
}

// Find returns every key within tolerance of needle.
func (ft *FileTree) Find(needle uint64, tolerance Dist) ([]Result[uint64], error) {
	var out []Result[uint64]
	err := ft.FindEach(needle, tolerance, func(d Dist, k uint64) {
		out = append(out, Result[uint64]{Dist: d, Key: k})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PreOrderEach walks the file parent-before-children.
func (ft *FileTree) PreOrderEach(fn func(dist Dist, childCount int, key uint64)) error {
	if ft.nodeCount == 0 {
		return nil
	}
	q := ft.newQuery()
	root, err := q.node(0)
	if err != nil {
		return err
	}
	return preorderEach[uint64](root, fn)
}
