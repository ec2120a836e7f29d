package bktree

import "fmt"

// Node is the tree node interface shared by the in-RAM tree and the
// file-backed query engine.
type Node[K any] interface {
	// Key returns the node's key.
	Key() K
	// HasChildAt reports whether a child occupies slot d.
	HasChildAt(d Dist) bool
	// ChildAt returns the child at slot d.
	ChildAt(d Dist) (Node[K], bool)
	// Children returns (slot, child) pairs ordered farthest slot first, so
	// that a stack consumer pops the nearest child first. File-backed
	// nodes can fail here when the mapping turns out to be truncated.
	Children() ([]Child[K], error)
}

// Child pairs a child node with its distance slot.
type Child[K any] struct {
	Dist Dist
	Node Node[K]
}

// RAMNode is the in-memory node: a key plus a sparse slice of child slots
// indexed by distance. Slot d holds the child whose distance from this
// node is exactly d; nil slots are empty. The slice grows on demand to the
// largest observed distance plus one.
type RAMNode[K any] struct {
	key      K
	children []*RAMNode[K]
}

// NewRAMNode creates a node with no children.
func NewRAMNode[K any](key K) *RAMNode[K] {
	return &RAMNode[K]{key: key, children: make([]*RAMNode[K], 0, 16)}
}

// Key implements Node.
func (n *RAMNode[K]) Key() K { return n.key }

// HasChildAt implements Node.
func (n *RAMNode[K]) HasChildAt(d Dist) bool { return n.childAt(d) != nil }

// ChildAt implements Node.
func (n *RAMNode[K]) ChildAt(d Dist) (Node[K], bool) {
	if c := n.childAt(d); c != nil {
		return c, true
	}
	return nil, false
}

func (n *RAMNode[K]) childAt(d Dist) *RAMNode[K] {
	if d < 0 || int(d) >= len(n.children) {
		return nil
	}
	return n.children[d]
}

// setChild attaches a child at slot d. Two children in one slot means the
// caller violated the insertion contract, so it panics.
func (n *RAMNode[K]) setChild(d Dist, child *RAMNode[K]) {
	if d < 0 {
		panic(fmt.Sprintf("bktree: negative distance slot %d", d))
	}
	for int(d) >= len(n.children) {
		n.children = append(n.children, nil)
	}
	if n.children[d] != nil {
		panic(fmt.Sprintf("bktree: child slot %d already occupied", d))
	}
	n.children[d] = child
}

// Children implements Node. Never fails for in-RAM nodes.
func (n *RAMNode[K]) Children() ([]Child[K], error) {
	var out []Child[K]
	for d := len(n.children) - 1; d >= 0; d-- {
		if c := n.children[d]; c != nil {
			out = append(out, Child[K]{Dist: Dist(d), Node: c})
		}
	}
	return out, nil
}
