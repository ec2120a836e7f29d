// Package store provides the persisted index file format for bktree: the
// fixed-width node codec, the growable memory-mapped build buffer, and the
// self-describing file layout (magic prefix, SHA-256 checksum, CBOR
// descriptor, 64-byte aligned data sections).
//
// The file format consists of:
//   - Prefix (86 bytes): "BKTREE: 0000\n" magic line + "SHA256: <hex>\n"
//   - Descriptor: CBOR map with creation time, node count, section table
//     and an internal padding field sized so the first data byte is
//     64-byte aligned from the start of the file
//   - Data sections in order Dist, Child, Num, Key, each zero-padded to a
//     64-byte aligned start; offsets count from the end of the descriptor
package store
