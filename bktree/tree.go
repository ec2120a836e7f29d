package bktree

// NodeAllocator creates nodes for the insert path. It is a separate
// contract so that backends with fallible storage can report allocation
// failure instead of panicking.
type NodeAllocator[K any] interface {
	NewChild(key K) (*RAMNode[K], error)
}

// RAMAllocator allocates heap nodes and never fails.
type RAMAllocator[K any] struct{}

func (RAMAllocator[K]) NewChild(key K) (*RAMNode[K], error) {
	return NewRAMNode(key), nil
}

// Tree is the in-memory BK-tree. It is built once by a single owner and
// then queried in place or rendered to a file; nodes are never removed or
// rekeyed after insertion.
type Tree[K, Q any] struct {
	kq     KeyQuery[K, Q]
	metric Metric[Q]
	alloc  NodeAllocator[K]

	root      *RAMNode[K]
	nodeCount int
	maxDepth  int
}

// New creates an empty tree using the heap allocator.
func New[K, Q any](kq KeyQuery[K, Q], metric Metric[Q]) *Tree[K, Q] {
	return NewWithAllocator(kq, metric, RAMAllocator[K]{})
}

// NewWithAllocator creates an empty tree with a custom node allocator.
func NewWithAllocator[K, Q any](kq KeyQuery[K, Q], metric Metric[Q], alloc NodeAllocator[K]) *Tree[K, Q] {
	return &Tree[K, Q]{kq: kq, metric: metric, alloc: alloc}
}

// Len returns the number of nodes, which equals the number of distinct
// keys added.
func (t *Tree[K, Q]) Len() int { return t.nodeCount }

// MaxDepth returns the deepest node level any insertion has reached, with
// the root at level 1. It is only a stack-capacity hint for traversal.
func (t *Tree[K, Q]) MaxDepth() int { return t.maxDepth }

// Root returns the root node, or nil for an empty tree.
func (t *Tree[K, Q]) Root() Node[K] {
	if t.root == nil {
		return nil
	}
	return t.root
}

// Add inserts a key derived from query. Starting at the root it computes
// the distance from the current node and descends into the child at that
// slot while one exists and the current key is not equal to the query.
// At the stopping node an equal key makes Add a no-op, so insertion is
// idempotent; otherwise a new node is attached at the computed slot.
//
// Distance 0 is not skipped: equal-distance-but-unequal keys (possible
// under degenerate metrics such as StrLenMetric) chain through slot 0, and
// the equality check still runs at every node on the chain.
func (t *Tree[K, Q]) Add(query Q) error {
	if t.root == nil {
		root, err := t.alloc.NewChild(t.kq.ToKey(query))
		if err != nil {
			return err
		}
		t.root = root
		t.nodeCount = 1
		if t.maxDepth < 1 {
			t.maxDepth = 1
		}
		return nil
	}

	cur := t.root
	depth := 1
	for {
		if t.kq.Eq(cur.key, query) {
			return nil
		}
		d := t.metric.Distance(t.kq.ToQuery(cur.key), query)
		next := cur.childAt(d)
		if next == nil {
			child, err := t.alloc.NewChild(t.kq.ToKey(query))
			if err != nil {
				return err
			}
			cur.setChild(d, child)
			t.nodeCount++
			depth++
			if depth > t.maxDepth {
				t.maxDepth = depth
			}
			return nil
		}
		cur = next
		depth++
	}
}
