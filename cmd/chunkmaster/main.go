// Command chunkmaster is the CLI entrypoint for the chunked TS→MP4
// converter.
//
// It parses flags, validates configuration, verifies the external engine is
// available, and runs the conversion pipeline over the input file or
// directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/chunkmaster/internal/config"
	"github.com/backmassage/chunkmaster/internal/ffmpeg"
	"github.com/backmassage/chunkmaster/internal/logging"
	"github.com/backmassage/chunkmaster/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once logging.New succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "chunkmaster: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "chunkmaster: %v\n", err)
		return 1
	}

	log, err := logging.New(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chunkmaster: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	log.Infof("=== Chunkmaster v%s (%s) ===", version, commit)

	// Fail fast if ffmpeg/ffprobe are unavailable.
	if err := ffmpeg.CheckDeps(); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	if v := ffmpeg.Version(); v != "" {
		log.Debugf("Engine: %s", v)
	}

	// Phase 3: Signal handling — cancel context on SIGINT/SIGTERM so the
	// pipeline can stop between stages without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warnf("Received interrupt, finishing current stage…")
		cancel()
	}()

	// Phase 4: Run pipeline (discover → probe → plan → chunk → encode → merge).
	// Startup failures, failed files, and interrupted batches all exit 1.
	stats, err := pipeline.Run(ctx, &cfg, log)
	if err != nil {
		return 1
	}
	if stats.Failed > 0 || stats.Interrupted {
		return 1
	}
	return 0
}
