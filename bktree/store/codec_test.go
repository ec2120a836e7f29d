package store

import "testing"

func TestReadPutUint(t *testing.T) {
	buf := make([]byte, 8)
	PutUint(buf, 0, 3, 0x010203)
	if buf[0] != 0x03 || buf[1] != 0x02 || buf[2] != 0x01 {
		t.Fatalf("little-endian layout wrong: % x", buf[:3])
	}
	v, ok := ReadUint(buf, 0, 3)
	if !ok || v != 0x010203 {
		t.Fatalf("ReadUint = %#x, %v", v, ok)
	}

	PutUint(buf, 3, 5, 0xDEADBEEF42)
	v, ok = ReadUint(buf, 3, 5)
	if !ok || v != 0xDEADBEEF42 {
		t.Fatalf("ReadUint = %#x, %v", v, ok)
	}
}

func TestReadUintTruncated(t *testing.T) {
	buf := make([]byte, 4)
	if _, ok := ReadUint(buf, 2, 4); ok {
		t.Fatal("read past end should report ok=false")
	}
	if _, ok := ReadUint(buf, -1, 2); ok {
		t.Fatal("negative offset should report ok=false")
	}
	if _, ok := ReadUint(buf, 0, 0); ok {
		t.Fatal("zero width should report ok=false")
	}
}

func TestPutUintPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("write past end should panic")
		}
	}()
	PutUint(make([]byte, 2), 1, 2, 1)
}

func TestPutUintOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("value wider than field should panic")
		}
	}()
	PutUint(make([]byte, 8), 0, 1, 256)
}

func TestBytesFor(t *testing.T) {
	cases := []struct {
		max  uint64
		want int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
		{1 << 32, 5},
		{1<<64 - 1, 8},
	}
	for _, c := range cases {
		if got := BytesFor(c.max); got != c.want {
			t.Errorf("BytesFor(%d) = %d, want %d", c.max, got, c.want)
		}
	}
}

func TestFNodeRoundTrip(t *testing.T) {
	cfg := FixedKeysConfig{Dist: 1, Child: 3, Num: 2, Key: 8}
	const count = 4
	dist := make([]byte, count*cfg.Dist)
	child := make([]byte, count*cfg.Child)
	num := make([]byte, count*cfg.Num)
	key := make([]byte, count*cfg.Key)

	for i := 0; i < count; i++ {
		n := FNode{Config: cfg, Index: i, Dist: dist, Child: child, Num: num, Key: key}
		n.SetDistance(i * 7)
		n.SetChildCount(i)
		n.SetChildOffset(i * 1000)
		copy(n.KeySlot(), []byte{byte(i), 0, 0, 0, 0, 0, 0, byte(i)})
	}
	for i := 0; i < count; i++ {
		n := FNode{Config: cfg, Index: i, Dist: dist, Child: child, Num: num, Key: key}
		if d, ok := n.Distance(); !ok || d != i*7 {
			t.Errorf("node %d Distance = %d, %v", i, d, ok)
		}
		if c, ok := n.ChildCount(); !ok || c != i {
			t.Errorf("node %d ChildCount = %d, %v", i, c, ok)
		}
		if o, ok := n.ChildOffset(); !ok || o != i*1000 {
			t.Errorf("node %d ChildOffset = %d, %v", i, o, ok)
		}
		kb, ok := n.KeyBytes()
		if !ok || kb[0] != byte(i) || kb[7] != byte(i) {
			t.Errorf("node %d KeyBytes = % x, %v", i, kb, ok)
		}
	}

	// One index past the end: every accessor reports ok=false.
	n := FNode{Config: cfg, Index: count, Dist: dist, Child: child, Num: num, Key: key}
	if _, ok := n.Distance(); ok {
		t.Error("Distance past end should report ok=false")
	}
	if _, ok := n.ChildCount(); ok {
		t.Error("ChildCount past end should report ok=false")
	}
	if _, ok := n.ChildOffset(); ok {
		t.Error("ChildOffset past end should report ok=false")
	}
	if _, ok := n.KeyBytes(); ok {
		t.Error("KeyBytes past end should report ok=false")
	}
}

func TestF64B8RoundTrip(t *testing.T) {
	const count = 3
	nodes := make([]byte, count*F64B8NodeSize)
	keys := make([]byte, count*F64B8KeySize)

	for i := 0; i < count; i++ {
		n := F64B8{Nodes: nodes, Keys: keys, Index: i}
		n.SetDistance(i + 1)
		n.SetChildCount(i * 2)
		n.SetChildOffset(i * 100000)
		n.SetKeyU64(uint64(i) << 40)
	}
	for i := 0; i < count; i++ {
		n := F64B8{Nodes: nodes, Keys: keys, Index: i}
		if d, ok := n.Distance(); !ok || d != i+1 {
			t.Errorf("node %d Distance = %d, %v", i, d, ok)
		}
		if c, ok := n.ChildCount(); !ok || c != i*2 {
			t.Errorf("node %d ChildCount = %d, %v", i, c, ok)
		}
		if o, ok := n.ChildOffset(); !ok || o != i*100000 {
			t.Errorf("node %d ChildOffset = %d, %v", i, o, ok)
		}
		if k, ok := n.KeyU64(); !ok || k != uint64(i)<<40 {
			t.Errorf("node %d KeyU64 = %#x, %v", i, k, ok)
		}
		// Reserved bytes stay zero.
		if nodes[i*F64B8NodeSize+2] != 0 || nodes[i*F64B8NodeSize+3] != 0 {
			t.Errorf("node %d reserved bytes dirty", i)
		}
	}

	n := F64B8{Nodes: nodes, Keys: keys, Index: count}
	if _, ok := n.Distance(); ok {
		t.Error("Distance past end should report ok=false")
	}
	if _, ok := n.KeyU64(); ok {
		t.Error("KeyU64 past end should report ok=false")
	}
}
