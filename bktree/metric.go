package bktree

import "math/bits"

// Dist is the distance value returned by every metric. It doubles as the
// child-slot index inside tree nodes: slot d holds the child at distance d
// from its parent.
type Dist int

// Metric is a distance function over queries. Implementations must be
// deterministic, symmetric and satisfy the triangle inequality; search
// pruning assumes it and never checks it.
type Metric[Q any] interface {
	Distance(a, b Q) Dist
}

// HammingMetric measures the number of differing bits between two 64-bit
// keys.
type HammingMetric struct{}

func (HammingMetric) Distance(a, b uint64) Dist {
	return Dist(bits.OnesCount64(a ^ b))
}

// StrLenMetric measures the absolute difference of byte lengths. It is a
// degenerate metric (distinct strings can be at distance 0) but a legal
// one, useful for exercising distance-0 chains.
type StrLenMetric struct{}

func (StrLenMetric) Distance(a, b string) Dist {
	d := len(a) - len(b)
	if d < 0 {
		d = -d
	}
	return Dist(d)
}
