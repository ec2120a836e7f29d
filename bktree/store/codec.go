package store

import (
	"encoding/binary"
	"fmt"
)

// All multi-byte values are little-endian.

// ReadUint reads a width-byte little-endian unsigned integer at off.
// ok is false when the read would run past the end of buf; callers must
// treat that as "no value", not as zero.
func ReadUint(buf []byte, off, width int) (v uint64, ok bool) {
	if width < 1 || width > 8 || off < 0 || off+width > len(buf) {
		return 0, false
	}
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[off+i])
	}
	return v, true
}

// PutUint writes a width-byte little-endian unsigned integer at off.
// Writing past the end of buf means the caller never reserved storage for
// this node, which is a rendering bug, so it panics rather than erroring.
func PutUint(buf []byte, off, width int, v uint64) {
	if width < 1 || width > 8 || off < 0 || off+width > len(buf) {
		panic(fmt.Sprintf("store: write of %d bytes at %d outside reserved buffer of %d", width, off, len(buf)))
	}
	for i := 0; i < width; i++ {
		buf[off+i] = byte(v)
		v >>= 8
	}
	if v != 0 {
		panic(fmt.Sprintf("store: value does not fit in %d bytes", width))
	}
}

// BytesFor returns the minimum byte width able to represent every value in
// [0, max].
func BytesFor(max uint64) int {
	w := 1
	for w < 8 && max >= 1<<(8*uint(w)) {
		w++
	}
	return w
}

// FixedKeysConfig holds the per-file byte widths of the four fixed-width
// sections. Widths are chosen when writing (minimum needed for the tree
// being rendered) and read back from the descriptor's ItemSize fields when
// opening.
type FixedKeysConfig struct {
	Dist  int
	Child int
	Num   int
	Key   int
}

// FNode is a view of one node spread across the four parallel section
// buffers. It copies nothing; accessors compute offsets on demand and
// report ok=false when a section is too short.
//
// Children of a node are stored contiguously, so child i lives at index
// ChildOffset()+i. A child offset of 0 means "no children": index 0 is the
// root, which can never be anyone's child.
type FNode struct {
	Config FixedKeysConfig
	Index  int

	Dist  []byte
	Child []byte
	Num   []byte
	Key   []byte
}

// Distance returns the node's distance from its parent. The root stores 0.
func (n FNode) Distance() (int, bool) {
	v, ok := ReadUint(n.Dist, n.Index*n.Config.Dist, n.Config.Dist)
	return int(v), ok
}

// ChildCount returns the number of children.
func (n FNode) ChildCount() (int, bool) {
	v, ok := ReadUint(n.Num, n.Index*n.Config.Num, n.Config.Num)
	return int(v), ok
}

// ChildOffset returns the node index of the first child, or 0 when the
// node has no children.
func (n FNode) ChildOffset() (int, bool) {
	v, ok := ReadUint(n.Child, n.Index*n.Config.Child, n.Config.Child)
	return int(v), ok
}

// KeyBytes returns the node's key slot in the key section.
func (n FNode) KeyBytes() ([]byte, bool) {
	start := n.Index * n.Config.Key
	end := start + n.Config.Key
	if start < 0 || end > len(n.Key) {
		return nil, false
	}
	return n.Key[start:end], true
}

// SetDistance writes the distance-from-parent field. Panics when storage
// for this node was never reserved.
func (n FNode) SetDistance(d int) {
	PutUint(n.Dist, n.Index*n.Config.Dist, n.Config.Dist, uint64(d))
}

// SetChildCount writes the child-count field.
func (n FNode) SetChildCount(c int) {
	PutUint(n.Num, n.Index*n.Config.Num, n.Config.Num, uint64(c))
}

// SetChildOffset writes the first-child index field.
func (n FNode) SetChildOffset(off int) {
	PutUint(n.Child, n.Index*n.Config.Child, n.Config.Child, uint64(off))
}

// KeySlot returns the writable key slot for this node. Panics when storage
// was never reserved.
func (n FNode) KeySlot() []byte {
	b, ok := n.KeyBytes()
	if !ok {
		panic(fmt.Sprintf("store: key slot %d outside reserved buffer", n.Index))
	}
	return b
}

const (
	// F64B8NodeSize is the packed per-node size of the compact layout.
	F64B8NodeSize = 8
	// F64B8KeySize is the fixed key size of the compact layout.
	F64B8KeySize = 8
)

// F64B8 is the compact single-array node layout: per node 1 byte distance,
// 1 byte child count, 2 reserved zero bytes and a 4-byte little-endian
// first-child index, with fixed 8-byte little-endian keys at index*8 in a
// separate key array. The child-offset-0 convention matches FNode.
type F64B8 struct {
	Nodes []byte
	Keys  []byte
	Index int
}

func (n F64B8) base() int { return n.Index * F64B8NodeSize }

// Distance returns the node's distance from its parent.
func (n F64B8) Distance() (int, bool) {
	v, ok := ReadUint(n.Nodes, n.base(), 1)
	return int(v), ok
}

// ChildCount returns the number of children.
func (n F64B8) ChildCount() (int, bool) {
	v, ok := ReadUint(n.Nodes, n.base()+1, 1)
	return int(v), ok
}

// ChildOffset returns the node index of the first child, 0 for none.
func (n F64B8) ChildOffset() (int, bool) {
	v, ok := ReadUint(n.Nodes, n.base()+4, 4)
	return int(v), ok
}

// KeyBytes returns the node's 8-byte key slot.
func (n F64B8) KeyBytes() ([]byte, bool) {
	start := n.Index * F64B8KeySize
	end := start + F64B8KeySize
	if start < 0 || end > len(n.Keys) {
		return nil, false
	}
	return n.Keys[start:end], true
}

// KeyU64 decodes the key slot as a little-endian uint64.
func (n F64B8) KeyU64() (uint64, bool) {
	b, ok := n.KeyBytes()
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// SetDistance writes the distance byte. Panics on unreserved storage.
func (n F64B8) SetDistance(d int) { PutUint(n.Nodes, n.base(), 1, uint64(d)) }

// SetChildCount writes the child-count byte.
func (n F64B8) SetChildCount(c int) { PutUint(n.Nodes, n.base()+1, 1, uint64(c)) }

// SetChildOffset writes the first-child index. The two reserved bytes
// before it stay zero.
func (n F64B8) SetChildOffset(off int) { PutUint(n.Nodes, n.base()+4, 4, uint64(off)) }

// SetKeyU64 writes the key slot.
func (n F64B8) SetKeyU64(k uint64) {
	start := n.Index * F64B8KeySize
	if start < 0 || start+F64B8KeySize > len(n.Keys) {
		panic(fmt.Sprintf("store: key slot %d outside reserved buffer", n.Index))
	}
	binary.LittleEndian.PutUint64(n.Keys[start:], k)
}
