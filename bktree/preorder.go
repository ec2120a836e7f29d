package bktree

type preorderEntry[K any] struct {
	dist Dist
	node Node[K]
}

// preorderEach visits every node parent-before-children with an explicit
// stack, calling fn with the node's distance from its parent (0 for the
// root), its child count and its key.
func preorderEach[K any](root Node[K], fn func(dist Dist, childCount int, key K)) error {
	if root == nil {
		return nil
	}
	stack := []preorderEntry[K]{{dist: 0, node: root}}
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := entry.node.Children()
		if err != nil {
			return err
		}
		fn(entry.dist, len(children), entry.node.Key())
		for _, c := range children {
			stack = append(stack, preorderEntry[K]{dist: c.Dist, node: c.Node})
		}
	}
	return nil
}

// PreOrderEach visits every node parent-before-children. This is the walk
// the on-disk rendering is built from.
func (t *Tree[K, Q]) PreOrderEach(fn func(dist Dist, childCount int, key K)) {
	_ = preorderEach(t.Root(), fn)
}
