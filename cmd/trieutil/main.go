// Command trieutil is a small operational tool for a pebble-backed trie
// store: it opens the store read-only and runs the width-first dangling-
// link inspector (C6) against a given state root, printing what it finds.
// It exists to give the CLI-facing side of this module a home, the way the
// teacher's cmd/eth2030 gives the node a CLI entry point; the core trie
// and triedb packages themselves have no CLI surface.
//
// Usage:
//
//	trieutil --datadir <dir> --root <hex-node-key> [--cache-bytes N] [--log-format json|text|color]
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ethsync/triecore/log"
	"github.com/ethsync/triecore/trie"
	"github.com/ethsync/triecore/triedb"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It takes CLI
// arguments without the program name so it can be tested in isolation.
func run(args []string) int {
	fs := flag.NewFlagSet("trieutil", flag.ContinueOnError)
	dataDir := fs.String("datadir", "", "pebble store directory (required)")
	rootHex := fs.String("root", "", "hex-encoded 32-byte state root to inspect (required)")
	cacheBytes := fs.Int("cache-bytes", 64*1024*1024, "read-through cache size in bytes, 0 disables it")
	maxDangling := fs.Int("max-dangling", 0, "stop after this many dangling links are found, 0 for unbounded")
	logFormat := fs.String("log-format", "json", "log output format: json, text, or color")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	base, err := newLogger(*logFormat, os.Stderr, slog.LevelInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	logger := base.Module("trieutil")

	if *dataDir == "" || *rootHex == "" {
		fmt.Fprintln(os.Stderr, "Error: --datadir and --root are required")
		return 2
	}
	root, err := parseNodeKey(*rootHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --root: %v\n", err)
		return 2
	}

	logger.Info("opening store", "datadir", *dataDir, "cache_bytes", *cacheBytes)
	opts := triedb.Options{Dir: *dataDir, CacheBytes: *cacheBytes, ReadOnly: true}
	disk, err := triedb.NewPebbleStore(opts)
	if err != nil {
		logger.Error("failed to open store", "err", err)
		return 1
	}
	defer disk.Close()
	store := triedb.NewCachingStore(disk, opts.CacheBytes)

	db := trie.NewDatabaseWithBackend(store)
	report, err := trie.HexaryInspect(trie.HashKey(root), nil, nil, 0, 0, *maxDangling, db)
	if err != nil {
		logger.Error("inspect failed", "err", err)
		return 1
	}

	logger.Info("inspect complete",
		"visited", report.Visited,
		"max_depth", report.MaxDepth,
		"danglings", len(report.Danglings),
		"suspended", report.Resume != nil,
	)
	for _, d := range report.Danglings {
		if d.HasKey {
			fmt.Printf("dangling path=%x childKey=%x\n", d.Path, d.ChildKey[:])
		} else {
			fmt.Printf("dangling path=%x (unresolved repair node)\n", d.Path)
		}
	}
	return 0
}

// newLogger selects the output formatter by name. All three render through
// the log package's LogFormatter implementations so the choice only
// affects presentation, never which records are emitted.
func newLogger(format string, w io.Writer, level slog.Level) (*log.Logger, error) {
	switch format {
	case "", "json":
		return log.NewFormatted(&log.JSONFormatter{}, w, level), nil
	case "text":
		return log.NewFormatted(&log.TextFormatter{}, w, level), nil
	case "color":
		return log.NewFormatted(&log.ColorFormatter{}, w, level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want json, text, or color)", format)
	}
}

func parseNodeKey(s string) (trie.NodeKey, error) {
	var k trie.NodeKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, err
	}
	if len(b) != len(k) {
		return k, fmt.Errorf("expected %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return k, nil
}
