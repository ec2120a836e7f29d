package bktree

import (
	"encoding/binary"
	"fmt"

	"github.com/ic-timon/bkindex/bktree/store"
)

// KeyEncoder renders keys into the fixed-width key section.
type KeyEncoder[K any] interface {
	// Size returns the fixed byte width of an encoded key.
	Size() int
	// Put writes the key into dst, which is exactly Size() bytes.
	Put(dst []byte, key K)
}

// U64KeyEncoder stores keys as 8-byte little-endian values, the only key
// width the file-backed query engine accepts.
type U64KeyEncoder struct{}

func (U64KeyEncoder) Size() int { return 8 }

func (U64KeyEncoder) Put(dst []byte, key uint64) {
	binary.LittleEndian.PutUint64(dst, key)
}

// measure walks the tree once to learn the values the fixed-width layout
// has to be able to represent.
func (t *Tree[K, Q]) measure() (nodes int, maxDist Dist, maxChildren int) {
	t.PreOrderEach(func(dist Dist, childCount int, _ K) {
		nodes++
		if dist > maxDist {
			maxDist = dist
		}
		if childCount > maxChildren {
			maxChildren = childCount
		}
	})
	return nodes, maxDist, maxChildren
}

type renderEntry[K any] struct {
	index int
	dist  Dist
	node  Node[K]
}

// WriteFile renders the tree pre-order into the four fixed-width sections
// and writes a self-describing index file at path. Section byte widths are
// the minimum the tree needs, so small trees stay small while the same
// layout scales to very large ones.
func WriteFile[K, Q any](t *Tree[K, Q], path string, enc KeyEncoder[K]) error {
	nodes, maxDist, maxChildren := t.measure()
	cfg := store.FixedKeysConfig{
		Dist:  store.BytesFor(uint64(maxDist)),
		Child: store.BytesFor(uint64(nodes)),
		Num:   store.BytesFor(uint64(maxChildren)),
		Key:   enc.Size(),
	}

	type section struct {
		width int
		buf   *store.ExtensibleMmap
	}
	sections := []*section{
		{width: cfg.Dist}, {width: cfg.Child}, {width: cfg.Num}, {width: cfg.Key},
	}
	for _, s := range sections {
		buf, err := store.NewExtensible("", "bkindex-section-*")
		if err != nil {
			return err
		}
		defer buf.Close()
		s.buf = buf
	}
	reserve := func(n int) error {
		for _, s := range sections {
			if _, _, err := s.buf.Alloc(n * s.width); err != nil {
				return err
			}
		}
		return nil
	}
	// Any Alloc can remap the buffers, so views are re-derived per node.
	fnode := func(index int) store.FNode {
		return store.FNode{
			Config: cfg,
			Index:  index,
			Dist:   sections[0].buf.Bytes(),
			Child:  sections[1].buf.Bytes(),
			Num:    sections[2].buf.Bytes(),
			Key:    sections[3].buf.Bytes(),
		}
	}

	if root := t.Root(); root != nil {
		if err := reserve(1); err != nil {
			return err
		}
		next := 1
		stack := []renderEntry[K]{{index: 0, dist: 0, node: root}}
		for len(stack) > 0 {
			entry := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			children, err := entry.node.Children()
			if err != nil {
				return err
			}
			// Children occupy a contiguous index range allocated before
			// any grandchild, which is what makes offset 0 safe to mean
			// "no children".
			base := 0
			if len(children) > 0 {
				base = next
				next += len(children)
				if err := reserve(len(children)); err != nil {
					return err
				}
			}

			n := fnode(entry.index)
			n.SetDistance(int(entry.dist))
			n.SetChildCount(len(children))
			n.SetChildOffset(base)
			enc.Put(n.KeySlot(), entry.node.Key())

			for i, c := range children {
				stack = append(stack, renderEntry[K]{index: base + i, dist: c.Dist, node: c.Node})
			}
		}
		if next != nodes {
			panic(fmt.Sprintf("bktree: rendered %d nodes, measured %d", next, nodes))
		}
	}

	return store.WriteFile(path, uint64(nodes),
		store.SectionData{ItemSize: uint64(cfg.Dist), Data: sections[0].buf.Bytes()},
		store.SectionData{ItemSize: uint64(cfg.Child), Data: sections[1].buf.Bytes()},
		store.SectionData{ItemSize: uint64(cfg.Num), Data: sections[2].buf.Bytes()},
		store.SectionData{ItemSize: uint64(cfg.Key), Data: sections[3].buf.Bytes()},
	)
}
