package bktree

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ic-timon/bkindex/bktree/store"
)

func randomKeys(n int, seed int64) []uint64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}

func buildAndWrite(t *testing.T, keys []uint64) (string, *Tree[uint64, uint64]) {
	t.Helper()
	tree := newU64Tree()
	for _, k := range keys {
		require.NoError(t, tree.Add(k))
	}
	path := filepath.Join(t.TempDir(), "index.bk")
	require.NoError(t, WriteFile(tree, path, U64KeyEncoder{}))
	return path, tree
}

func TestFileRoundTrip(t *testing.T) {
	keys := randomKeys(500, 42)
	path, tree := buildAndWrite(t, keys)

	ft, err := OpenFile(path, nil)
	require.NoError(t, err)
	defer ft.Close()

	assert.Equal(t, tree.Len(), ft.Len())

	needles := append(randomKeys(20, 7), keys[0], keys[123])
	for _, needle := range needles {
		for _, tol := range []Dist{0, 1, 4, 16} {
			want := sortedKeys(tree.Find(needle, tol))
			got, err := ft.Find(needle, tol)
			require.NoError(t, err)
			assert.Equal(t, want, sortedKeys(got), "needle %#x tolerance %d", needle, tol)
		}
	}
}

func TestFilePreOrderMatchesRAM(t *testing.T) {
	keys := randomKeys(100, 3)
	path, tree := buildAndWrite(t, keys)

	ft, err := OpenFile(path, nil)
	require.NoError(t, err)
	defer ft.Close()

	type visit struct {
		dist  Dist
		count int
		key   uint64
	}
	collect := func(each func(func(Dist, int, uint64))) map[visit]int {
		out := map[visit]int{}
		each(func(d Dist, c int, k uint64) { out[visit{d, c, k}]++ })
		return out
	}
	ram := collect(tree.PreOrderEach)
	file := collect(func(fn func(Dist, int, uint64)) {
		require.NoError(t, ft.PreOrderEach(fn))
	})
	assert.Equal(t, ram, file)
}

func TestFileEmptyTree(t *testing.T) {
	path, _ := buildAndWrite(t, nil)
	ft, err := OpenFile(path, nil)
	require.NoError(t, err)
	defer ft.Close()
	assert.Equal(t, 0, ft.Len())
	got, err := ft.Find(0, 64)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSingleNode(t *testing.T) {
	path, _ := buildAndWrite(t, []uint64{99})
	ft, err := OpenFile(path, nil)
	require.NoError(t, err)
	defer ft.Close()
	got, err := ft.Find(99, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(99), got[0].Key)
	assert.Equal(t, Dist(0), got[0].Dist)
}

func TestFileCustomMetricAndStackHint(t *testing.T) {
	keys := randomKeys(64, 11)
	path, tree := buildAndWrite(t, keys)

	cfg := &FileConfig{VerifyChecksum: false, Metric: HammingMetric{}, StackHint: 1}
	ft, err := OpenFile(path, cfg)
	require.NoError(t, err)
	defer ft.Close()

	want := sortedKeys(tree.Find(keys[5], 8))
	got, err := ft.Find(keys[5], 8)
	require.NoError(t, err)
	assert.Equal(t, want, sortedKeys(got))
}

func TestFileTruncatedSections(t *testing.T) {
	keys := randomKeys(50, 5)
	path, _ := buildAndWrite(t, keys)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Chop the file inside the data sections. The descriptor then claims
	// more nodes than the mapping holds, which open must reject.
	short := filepath.Join(t.TempDir(), "short.bk")
	require.NoError(t, os.WriteFile(short, data[:len(data)-64], 0o644))

	cfg := &FileConfig{VerifyChecksum: false}
	_, err = OpenFile(short, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrFormat)
}

func TestFileUnsupportedKeyWidth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.bk")
	nodes := uint64(1)
	require.NoError(t, store.WriteFile(path, nodes,
		store.SectionData{ItemSize: 1, Data: []byte{0}},
		store.SectionData{ItemSize: 1, Data: []byte{0}},
		store.SectionData{ItemSize: 1, Data: []byte{0}},
		store.SectionData{ItemSize: 16, Data: make([]byte, 16)},
	))
	_, err := OpenFile(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrFormat)
}

func BenchmarkFileFind(b *testing.B) {
	keys := randomKeys(10000, 1)
	tree := newU64Tree()
	for _, k := range keys {
		tree.Add(k)
	}
	path := filepath.Join(b.TempDir(), "bench.bk")
	if err := WriteFile(tree, path, U64KeyEncoder{}); err != nil {
		b.Fatal(err)
	}
	ft, err := OpenFile(path, &FileConfig{VerifyChecksum: false})
	if err != nil {
		b.Fatal(err)
	}
	defer ft.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ft.FindEach(keys[i%len(keys)], 4, func(Dist, uint64) {})
	}
}

func BenchmarkTreeFind(b *testing.B) {
	keys := randomKeys(10000, 1)
	tree := newU64Tree()
	for _, k := range keys {
		tree.Add(k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.FindEach(keys[i%len(keys)], 4, func(Dist, uint64) {})
	}
}
