package store

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	// MagicVersion is the first line of every index file.
	MagicVersion = "BKTREE: 0000"

	// HashName tags the checksum algorithm on the second line.
	HashName = "SHA256"

	// PrefixSize is the fixed total size of the magic and checksum lines:
	// 13 bytes of magic + "SHA256: " + 64 hex digits + newline.
	PrefixSize = 86

	// Alignment is the boundary every section start (and the end of the
	// descriptor) must land on, measured from the start of the file.
	Alignment = 64
)

// FileSection describes one data section in the descriptor. Offset counts
// from the first byte after the descriptor. A nil ItemSize means entries
// are variable width.
type FileSection struct {
	ItemSize *uint64 `cbor:"ItemSize"`
	Bytes    uint64  `cbor:"Bytes"`
	Offset   uint64  `cbor:"Offset"`
}

// Describe renders the section for log or tool output.
func (s *FileSection) Describe() string {
	if s == nil {
		return "absent"
	}
	if s.ItemSize == nil {
		return fmt.Sprintf("%d bytes at +%d, variable width", s.Bytes, s.Offset)
	}
	return fmt.Sprintf("%d bytes at +%d, %d per item", s.Bytes, s.Offset, *s.ItemSize)
}

// FileSections is the section table. The four sections hold, per node and
// in node-index order: distance from parent, first-child index, child
// count, and key bytes.
type FileSections struct {
	Dist  *FileSection `cbor:"Dist"`
	Child *FileSection `cbor:"Child"`
	Num   *FileSection `cbor:"Num"`
	Key   *FileSection `cbor:"Key"`
}

// FileDescr is the descriptor carried in the header. It round-trips
// through CBOR unchanged except for Padding, which Encode recomputes so
// the byte following the descriptor is Alignment-aligned in the file.
type FileDescr struct {
	CreatedOn string       `cbor:"Created-On"`
	NodeCount uint64       `cbor:"Node-Count"`
	Sections  FileSections `cbor:"Sections"`
	Padding   string       `cbor:"Padding"`
}

// Config extracts the fixed byte widths from the section table. It fails
// when a section is missing or has no fixed item size.
func (d *FileDescr) Config() (FixedKeysConfig, error) {
	var cfg FixedKeysConfig
	for _, s := range []struct {
		name    string
		section *FileSection
		width   *int
	}{
		{"Dist", d.Sections.Dist, &cfg.Dist},
		{"Child", d.Sections.Child, &cfg.Child},
		{"Num", d.Sections.Num, &cfg.Num},
		{"Key", d.Sections.Key, &cfg.Key},
	} {
		if s.section == nil {
			return cfg, fmt.Errorf("%w: missing %s section", ErrFormat, s.name)
		}
		if s.section.ItemSize == nil {
			return cfg, fmt.Errorf("%w: %s section has no fixed item size", ErrFormat, s.name)
		}
		*s.width = int(*s.section.ItemSize)
	}
	return cfg, nil
}

// Encode serializes the descriptor, recomputing Padding until the encoded
// bytes end on an Alignment boundary when written at offset.
func (d *FileDescr) Encode(offset int) ([]byte, error) {
	pad := 0
	for try := 0; try < 8; try++ {
		d.Padding = strings.Repeat(".", pad)
		buf, err := cbor.Marshal(d)
		if err != nil {
			return nil, err
		}
		rem := (offset + len(buf)) % Alignment
		if rem == 0 {
			return buf, nil
		}
		pad += Alignment - rem
	}
	return nil, fmt.Errorf("%w: descriptor padding did not converge", ErrFormat)
}

func alignUp(x, align int) int {
	if x%align == 0 {
		return x
	}
	return (x/align + 1) * align
}

// SectionData is one section's payload for WriteFile. ItemSize 0 marks a
// variable-width section.
type SectionData struct {
	ItemSize uint64
	Data     []byte
}

func (s SectionData) descr(offset int) *FileSection {
	fs := &FileSection{Bytes: uint64(len(s.Data)), Offset: uint64(offset)}
	if s.ItemSize != 0 {
		size := s.ItemSize
		fs.ItemSize = &size
	}
	return fs
}

// WriteFile assembles and writes a complete index file: prefix, descriptor
// and the four sections in order Dist, Child, Num, Key, each zero-padded
// to an Alignment-aligned start. The SHA-256 digest covers every byte
// after the checksum line.
func WriteFile(path string, nodeCount uint64, dist, child, num, key SectionData) error {
	descr := &FileDescr{
		CreatedOn: time.Now().UTC().Format(time.RFC3339),
		NodeCount: nodeCount,
	}

	// Section offsets count from the end of the descriptor, which Encode
	// puts on an Alignment boundary, so aligned offsets stay aligned in
	// the file.
	off := 0
	sections := []SectionData{dist, child, num, key}
	descrs := make([]*FileSection, len(sections))
	for i, s := range sections {
		descrs[i] = s.descr(off)
		off = alignUp(off+len(s.Data), Alignment)
	}
	descr.Sections = FileSections{Dist: descrs[0], Child: descrs[1], Num: descrs[2], Key: descrs[3]}

	encoded, err := descr.Encode(PrefixSize)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	body.Write(encoded)
	for i, s := range sections {
		gap := int(descrs[i].Offset) - (body.Len() - len(encoded))
		body.Write(make([]byte, gap))
		body.Write(s.Data)
	}

	sum := sha256.Sum256(body.Bytes())

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s\n%s: %x\n", MagicVersion, HashName, sum); err != nil {
		return err
	}
	if _, err := f.Write(body.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}
