package bktree

// Result is one search hit: a key and its distance from the needle.
type Result[K any] struct {
	Dist Dist
	Key  K
}

type findEntry[K any] struct {
	dist Dist
	node Node[K]
}

// findEach is the tolerance search shared by the in-RAM tree and the
// file-backed engine. It keeps an explicit stack instead of recursing so
// traversal depth never depends on goroutine stack growth, which matters
// for deep file-backed trees.
//
// For each popped candidate, only children in slots
// [dist-tolerance, dist+tolerance] can possibly be within tolerance of the
// needle; everything outside that window is pruned by the triangle
// inequality without visiting its subtree.
func findEach[K, Q any](root Node[K], kq KeyQuery[K, Q], metric Metric[Q], stackHint int, needle Q, tolerance Dist, fn func(Dist, K)) error {
	if root == nil {
		return nil
	}
	if stackHint < 1 {
		stackHint = 1
	}
	stack := make([]findEntry[K], 0, stackHint)
	stack = append(stack, findEntry[K]{
		dist: metric.Distance(kq.ToQuery(root.Key()), needle),
		node: root,
	})

	for len(stack) > 0 {
		candidate := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		min := candidate.dist - tolerance
		if min < 0 {
			min = 0
		}
		max := candidate.dist + tolerance

		children, err := candidate.node.Children()
		if err != nil {
			return err
		}
		// Children arrive farthest slot first, so the nearest pops first.
		for _, c := range children {
			if c.Dist < min || c.Dist > max {
				continue
			}
			stack = append(stack, findEntry[K]{
				dist: metric.Distance(kq.ToQuery(c.Node.Key()), needle),
				node: c.Node,
			})
		}

		if candidate.dist <= tolerance {
			fn(candidate.dist, candidate.node.Key())
		}
	}
	return nil
}

// FindEach calls fn with every key within tolerance of needle. Result
// order is unspecified.
func (t *Tree[K, Q]) FindEach(needle Q, tolerance Dist, fn func(Dist, K)) {
	// In-RAM children never fail.
	_ = findEach(t.Root(), t.kq, t.metric, t.maxDepth, needle, tolerance, fn)
}

// Find returns every key within tolerance of needle.
func (t *Tree[K, Q]) Find(needle Q, tolerance Dist) []Result[K] {
	var out []Result[K]
	t.FindEach(needle, tolerance, func(d Dist, k K) {
		out = append(out, Result[K]{Dist: d, Key: k})
	})
	return out
}
