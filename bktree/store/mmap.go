package store

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"

	mmapgo "github.com/edsrzf/mmap-go"
	"github.com/fxamacker/cbor/v2"
)

// File is a read-only, memory-mapped index file with a decoded descriptor.
// It is immutable once opened; any number of independent query sessions
// may read it.
type File struct {
	f         *os.File
	data      mmapgo.MMap
	descr     *FileDescr
	headerEnd int
}

// OpenFile maps path read-only, validates the magic line, optionally
// verifies the SHA-256 digest over the remainder of the file, and decodes
// the descriptor. Callers that skip verification accept unverified data.
func OpenFile(path string, verifyChecksum bool) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmapgo.Map(f, mmapgo.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	file := &File{f: f, data: data}
	if err := file.readHeader(verifyChecksum); err != nil {
		file.Close()
		return nil, err
	}
	// Queries hop between nodes all over the mapping.
	adviseRandom(file.data)
	return file, nil
}

func (f *File) readHeader(verifyChecksum bool) error {
	if len(f.data) < PrefixSize {
		return fmt.Errorf("%w: file shorter than prefix", ErrFormat)
	}
	magic := []byte(MagicVersion + "\n")
	if !bytes.Equal(f.data[:len(magic)], magic) {
		return fmt.Errorf("%w: expected magic %q", ErrFormat, MagicVersion)
	}
	line := f.data[len(magic):PrefixSize]
	tag := []byte(HashName + ": ")
	if !bytes.HasPrefix(line, tag) || line[len(line)-1] != '\n' {
		return fmt.Errorf("%w: expected %q checksum line", ErrFormat, HashName)
	}
	want := line[len(tag) : len(line)-1]

	if verifyChecksum {
		sum := sha256.Sum256(f.data[PrefixSize:])
		found := fmt.Sprintf("%x", sum)
		if found != string(want) {
			return fmt.Errorf("%w: found %s, expected %s", ErrIntegrity, found, want)
		}
	}

	dec := cbor.NewDecoder(bytes.NewReader(f.data[PrefixSize:]))
	var descr FileDescr
	if err := dec.Decode(&descr); err != nil {
		return fmt.Errorf("%w: descriptor: %v", ErrFormat, err)
	}
	f.descr = &descr
	f.headerEnd = PrefixSize + dec.NumBytesRead()
	return nil
}

// Descriptor returns the decoded descriptor. The returned value is shared;
// callers must not modify it.
func (f *File) Descriptor() *FileDescr { return f.descr }

// HeaderEnd returns the absolute offset of the first byte after the
// descriptor; section offsets are relative to it.
func (f *File) HeaderEnd() int { return f.headerEnd }

// Section returns the mapped byte range the descriptor entry describes,
// without copying. The slice stays valid until Close.
func (f *File) Section(s *FileSection) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: missing section", ErrFormat)
	}
	start := f.headerEnd + int(s.Offset)
	end := start + int(s.Bytes)
	if start < f.headerEnd || end > len(f.data) {
		return nil, fmt.Errorf("%w: section [%d, %d) outside file of %d bytes", ErrTruncated, start, end, len(f.data))
	}
	return f.data[start:end], nil
}

// Close unmaps and closes the file. Section slices become invalid.
func (f *File) Close() error {
	var first error
	if f.data != nil {
		first = f.data.Unmap()
		f.data = nil
	}
	if f.f != nil {
		if err := f.f.Close(); err != nil && first == nil {
			first = err
		}
		f.f = nil
	}
	return first
}
