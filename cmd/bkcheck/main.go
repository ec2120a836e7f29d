// Command bkcheck verifies an index file's checksum and prints its
// descriptor. With -dump it also walks every node pre-order.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ic-timon/bkindex/bktree"
)

func main() {
	index := flag.String("index", "index.bk", "index file to check")
	dump := flag.Bool("dump", false, "print every node pre-order")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ft, err := bktree.OpenFile(*index, nil)
	if err != nil {
		logger.Error("open index", "path", *index, "err", err)
		os.Exit(1)
	}
	defer ft.Close()

	descr := ft.Descriptor()
	fmt.Printf("created-on: %s\n", descr.CreatedOn)
	fmt.Printf("node-count: %d\n", descr.NodeCount)
	fmt.Printf("dist:  %s\n", descr.Sections.Dist.Describe())
	fmt.Printf("child: %s\n", descr.Sections.Child.Describe())
	fmt.Printf("num:   %s\n", descr.Sections.Num.Describe())
	fmt.Printf("key:   %s\n", descr.Sections.Key.Describe())

	if *dump {
		err := ft.PreOrderEach(func(d bktree.Dist, childCount int, key uint64) {
			fmt.Printf("%3d %3d %#016x\n", d, childCount, key)
		})
		if err != nil {
			logger.Error("walk", "err", err)
			os.Exit(1)
		}
	}
	logger.Info("index ok", "path", *index, "nodes", ft.Len())
}
