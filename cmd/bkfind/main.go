// Command bkfind queries an index file for keys within a Hamming-distance
// tolerance of a needle and prints one "distance key" pair per line.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ic-timon/bkindex/bktree"
)

func main() {
	index := flag.String("index", "index.bk", "index file to query")
	needleArg := flag.String("needle", "", "key to search for (decimal or 0x hex)")
	tolerance := flag.Int("tolerance", 0, "maximum distance from the needle")
	verify := flag.Bool("verify", true, "verify the file checksum before querying")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	needle, err := strconv.ParseUint(*needleArg, 0, 64)
	if err != nil {
		logger.Error("bad needle", "value", *needleArg, "err", err)
		os.Exit(2)
	}

	cfg := bktree.DefaultFileConfig()
	cfg.VerifyChecksum = *verify
	ft, err := bktree.OpenFile(*index, cfg)
	if err != nil {
		logger.Error("open index", "path", *index, "err", err)
		os.Exit(1)
	}
	defer ft.Close()

	hits := 0
	err = ft.FindEach(needle, bktree.Dist(*tolerance), func(d bktree.Dist, key uint64) {
		hits++
		fmt.Printf("%d %#016x\n", d, key)
	})
	if err != nil {
		logger.Error("search", "err", err)
		os.Exit(1)
	}
	logger.Info("done", "nodes", ft.Len(), "hits", hits)
}
