//go:build unix

package store

import "golang.org/x/sys/unix"

// adviseRandom tells the kernel the mapping will see random access, which
// is what tolerance queries over a mapped tree look like. Best effort.
func adviseRandom(b []byte) {
	if len(b) == 0 {
		return
	}
	_ = unix.Madvise(b, unix.MADV_RANDOM)
}
