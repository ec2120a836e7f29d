package store

import "errors"

var (
	// ErrFormat reports a malformed or unsupported index file: bad magic,
	// unknown checksum algorithm, or a missing/misshapen section.
	ErrFormat = errors.New("bkindex: malformed index file")

	// ErrIntegrity reports a checksum mismatch on a verified read.
	ErrIntegrity = errors.New("bkindex: checksum mismatch")

	// ErrTruncated reports a codec read that would run past the end of a
	// section buffer.
	ErrTruncated = errors.New("bkindex: truncated section")
)
