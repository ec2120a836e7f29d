package bktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ic-timon/bkindex/bktree/store"
)

func TestCompactRoundTrip(t *testing.T) {
	keys := randomKeys(300, 21)
	tree := newU64Tree()
	for _, k := range keys {
		require.NoError(t, tree.Add(k))
	}

	nodes, keyBytes, err := RenderF64B8(tree, U64KeyEncoder{})
	require.NoError(t, err)
	assert.Len(t, nodes, tree.Len()*store.F64B8NodeSize)
	assert.Len(t, keyBytes, tree.Len()*store.F64B8KeySize)

	ct := NewCompactTree(nodes, keyBytes, nil)
	assert.Equal(t, tree.Len(), ct.Len())

	for _, needle := range []uint64{keys[0], keys[50], 0} {
		for _, tol := range []Dist{0, 2, 8} {
			want := sortedKeys(tree.Find(needle, tol))
			got, err := ct.Find(needle, tol)
			require.NoError(t, err)
			assert.Equal(t, want, sortedKeys(got))
		}
	}
}

func TestCompactEmpty(t *testing.T) {
	tree := newU64Tree()
	nodes, keys, err := RenderF64B8(tree, U64KeyEncoder{})
	require.NoError(t, err)
	ct := NewCompactTree(nodes, keys, nil)
	got, err := ct.Find(0, 64)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type wideEncoder struct{}

func (wideEncoder) Size() int { return 16 }

func (wideEncoder) Put(dst []byte, key uint64) {}

func TestCompactRejectsWideKeys(t *testing.T) {
	tree := newU64Tree()
	tree.Add(1)
	_, _, err := RenderF64B8(tree, wideEncoder{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrFormat)
}

func TestCompactTruncated(t *testing.T) {
	tree := newU64Tree()
	for _, k := range []uint64{0, 1, 2, 3} {
		tree.Add(k)
	}
	nodes, keys, err := RenderF64B8(tree, U64KeyEncoder{})
	require.NoError(t, err)

	// Node array cut mid-tree: traversal must surface a format error, not
	// panic or silently drop nodes.
	ct := NewCompactTree(nodes[:store.F64B8NodeSize], keys, nil)
	_, err = ct.Find(0, 64)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrFormat)
}
