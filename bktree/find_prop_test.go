package bktree

import (
	"math/bits"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// bruteForce is the oracle: scan every key, no pruning.
func bruteForce(keys []uint64, needle uint64, tolerance Dist) []uint64 {
	seen := map[uint64]bool{}
	var out []uint64
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if Dist(bits.OnesCount64(k^needle)) <= tolerance {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestFindMatchesBruteForce(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("pruned search equals full scan", prop.ForAll(
		func(keys []uint64, needle uint64, tolerance int) bool {
			tree := newU64Tree()
			for _, k := range keys {
				if err := tree.Add(k); err != nil {
					return false
				}
			}
			got := sortedKeys(tree.Find(needle, Dist(tolerance)))
			want := bruteForce(keys, needle, Dist(tolerance))
			return equalKeys(got, want)
		},
		gen.SliceOf(gen.UInt64()),
		gen.UInt64(),
		gen.IntRange(0, 64),
	))

	properties.Property("insertion is idempotent", prop.ForAll(
		func(keys []uint64) bool {
			tree := newU64Tree()
			for _, k := range keys {
				tree.Add(k)
			}
			once := tree.Len()
			for _, k := range keys {
				tree.Add(k)
			}
			return tree.Len() == once
		},
		gen.SliceOf(gen.UInt64()),
	))

	properties.Property("insertion order does not change results", prop.ForAll(
		func(keys []uint64, needle uint64, tolerance int) bool {
			forward := newU64Tree()
			for _, k := range keys {
				forward.Add(k)
			}
			backward := newU64Tree()
			for i := len(keys) - 1; i >= 0; i-- {
				backward.Add(keys[i])
			}
			a := sortedKeys(forward.Find(needle, Dist(tolerance)))
			b := sortedKeys(backward.Find(needle, Dist(tolerance)))
			return equalKeys(a, b)
		},
		gen.SliceOf(gen.UInt64()),
		gen.UInt64(),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
