// Command bkbuild reads 64-bit keys from a text file (one per line,
// decimal or 0x-prefixed hex) and writes a queryable index file.
package main

import (
	"bufio"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ic-timon/bkindex/bktree"
)

func main() {
	in := flag.String("in", "", "input file with one key per line (- for stdin)")
	out := flag.String("out", "index.bk", "output index file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *in == "" {
		logger.Error("missing -in")
		os.Exit(2)
	}

	src := os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			logger.Error("open input", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		src = f
	}

	start := time.Now()
	tree := bktree.New[uint64, uint64](bktree.U64Key{}, bktree.HammingMetric{})
	lines := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines++
		key, err := strconv.ParseUint(line, 0, 64)
		if err != nil {
			logger.Error("bad key", "line", lines, "value", line, "err", err)
			os.Exit(1)
		}
		if err := tree.Add(key); err != nil {
			logger.Error("add", "key", key, "err", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read input", "err", err)
		os.Exit(1)
	}

	if err := bktree.WriteFile(tree, *out, bktree.U64KeyEncoder{}); err != nil {
		logger.Error("write index", "path", *out, "err", err)
		os.Exit(1)
	}
	logger.Info("index written",
		"path", *out,
		"keys", lines,
		"nodes", tree.Len(),
		"depth", tree.MaxDepth(),
		"elapsed", time.Since(start))
}
