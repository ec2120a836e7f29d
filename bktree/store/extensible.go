package store

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// growThreshold caps doubling: below it capacity doubles, above it grows by
// this fixed increment.
const growThreshold = 1 << 30

const initialCap = 4096

// ExtensibleMmap is an append-only byte region backed by a resizable
// memory-mapped file. Alloc hands out monotonically increasing offsets.
//
// Resource-safety rule: any Alloc call may grow and remap the backing file,
// which invalidates every slice previously returned by Alloc or Bytes.
// Callers must re-derive views by offset after allocating, never hold one
// across an Alloc.
type ExtensibleMmap struct {
	f     *os.File
	ram   mmap.MMap
	alloc int
	owned bool // remove the backing file on Close
}

// NewExtensible creates an ExtensibleMmap on a fresh temporary file in dir
// (the default temp dir when dir is empty). The file is removed on Close.
func NewExtensible(dir, pattern string) (*ExtensibleMmap, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	e, err := OnFile(f)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	e.owned = true
	return e, nil
}

// OnFile creates an ExtensibleMmap over an existing writable file. The
// caller keeps ownership of the file; Close only unmaps it.
func OnFile(f *os.File) (*ExtensibleMmap, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < initialCap {
		if err := f.Truncate(initialCap); err != nil {
			return nil, err
		}
	}
	ram, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &ExtensibleMmap{f: f, ram: ram}, nil
}

// Len returns the allocation cursor: the number of bytes handed out so far.
func (e *ExtensibleMmap) Len() int { return e.alloc }

// Cap returns the currently mapped capacity.
func (e *ExtensibleMmap) Cap() int { return len(e.ram) }

// Bytes returns the allocated prefix of the mapping. The slice is
// invalidated by the next Alloc.
func (e *ExtensibleMmap) Bytes() []byte { return e.ram[:e.alloc] }

// Alloc reserves n more bytes and returns their start offset together with
// a writable view of just the reserved range. The view (and every earlier
// one) is invalidated by the next Alloc.
func (e *ExtensibleMmap) Alloc(n int) (int, []byte, error) {
	if n < 0 {
		return 0, nil, fmt.Errorf("store: negative allocation %d", n)
	}
	start := e.alloc
	if err := e.ensure(start + n); err != nil {
		return 0, nil, err
	}
	e.alloc = start + n
	return start, e.ram[start : start+n], nil
}

// ensure grows the mapping to hold at least need bytes: double below the
// threshold, add the threshold above it. Growth flushes, resizes the file
// and remaps.
func (e *ExtensibleMmap) ensure(need int) error {
	cur := len(e.ram)
	if need <= cur {
		return nil
	}
	newSize := cur * 2
	if cur >= growThreshold {
		newSize = cur + growThreshold
	}
	if newSize < need {
		newSize = need
	}
	if err := e.ram.Flush(); err != nil {
		return err
	}
	if err := e.ram.Unmap(); err != nil {
		return err
	}
	e.ram = nil
	if err := e.f.Truncate(int64(newSize)); err != nil {
		return err
	}
	ram, err := mmap.Map(e.f, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	e.ram = ram
	return nil
}

// Flush syncs the mapping to the backing file.
func (e *ExtensibleMmap) Flush() error {
	if e.ram == nil {
		return nil
	}
	return e.ram.Flush()
}

// Close unmaps the buffer and, for temp-file backed buffers, removes the
// backing file.
func (e *ExtensibleMmap) Close() error {
	var first error
	if e.ram != nil {
		first = e.ram.Unmap()
		e.ram = nil
	}
	if e.owned && e.f != nil {
		name := e.f.Name()
		if err := e.f.Close(); err != nil && first == nil {
			first = err
		}
		if err := os.Remove(name); err != nil && first == nil {
			first = err
		}
		e.f = nil
	}
	return first
}
