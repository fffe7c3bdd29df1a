package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arkade.dev/assets/asset"
	"arkade.dev/assets/indexer"
	"arkade.dev/assets/indexer/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(stderr io.Writer) {
	fmt.Fprintln(stderr, "usage: arkade-indexer <init|apply|add-to-mempool|rollback|get-speculative-state|get-confirmed-state> [flags]")
}

func run(args []string, stdout, stderr io.Writer) int {
	// A .env in the working directory may carry ARKADE_DATADIR and friends.
	_ = godotenv.Load()

	if len(args) == 0 {
		usage(stderr)
		return 1
	}
	sub := args[0]

	defaults := DefaultConfig()
	if env := os.Getenv("ARKADE_DATADIR"); env != "" {
		defaults.DataDir = env
	}

	cfg := defaults
	fs := flag.NewFlagSet("arkade-indexer "+sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "indexer data directory")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")
	blockFile := fs.String("file", "", "block JSON file (apply)")
	txFile := fs.String("tx", "", "transaction JSON file (add-to-mempool)")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := ValidateConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 1
	}
	logger := newLogger(stderr, cfg.LogLevel)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", "err", err)
			}
		}()
	}

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer db.Close()

	ix, err := indexer.New(db, logger)
	if err != nil {
		fmt.Fprintf(stderr, "open indexer: %v\n", err)
		return 1
	}

	switch sub {
	case "init":
		if err := ix.Init(); err != nil {
			fmt.Fprintf(stderr, "init: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "initialized at height %d\n", ix.State().BlockHeight)
		return 0

	case "apply":
		if *blockFile == "" {
			fmt.Fprintln(stderr, "apply: -file is required")
			return 1
		}
		blk, err := readBlockFile(*blockFile)
		if err != nil {
			fmt.Fprintf(stderr, "apply: %v\n", err)
			return 1
		}
		if err := ix.ApplyBlock(blk); err != nil {
			fmt.Fprintf(stderr, "apply: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "applied block %d\n", blk.Height)
		return 0

	case "add-to-mempool":
		if *txFile == "" {
			fmt.Fprintln(stderr, "add-to-mempool: -tx is required")
			return 1
		}
		tx, err := readTxFile(*txFile)
		if err != nil {
			fmt.Fprintf(stderr, "add-to-mempool: %v\n", err)
			return 1
		}
		if err := ix.ApplyToMempool(tx); err != nil {
			fmt.Fprintf(stderr, "add-to-mempool: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "accepted %s\n", asset.Hex32(tx.Txid))
		return 0

	case "rollback":
		changed, err := ix.RollbackLastBlock()
		if err != nil {
			fmt.Fprintf(stderr, "rollback: %v\n", err)
			return 1
		}
		if !changed {
			fmt.Fprintln(stdout, "nothing to roll back")
			return 0
		}
		fmt.Fprintf(stdout, "rolled back to height %d\n", ix.State().BlockHeight)
		return 0

	case "get-confirmed-state":
		return printState(stdout, stderr, ix.State())

	case "get-speculative-state":
		return printState(stdout, stderr, ix.SpeculativeState())

	default:
		usage(stderr)
		return 1
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func readBlockFile(path string) (*asset.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var j asset.BlockJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	return asset.BlockFromJSON(j)
}

func readTxFile(path string) (*asset.Tx, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var j asset.TxJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode tx: %w", err)
	}
	return asset.TxFromJSON(j)
}

func printState(stdout, stderr io.Writer, st *indexer.State) int {
	doc, err := store.EncodeSnapshot(st)
	if err != nil {
		fmt.Fprintf(stderr, "encode state: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(doc)
	_, _ = io.WriteString(stdout, "\n")
	return 0
}
