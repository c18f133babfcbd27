// Package pipeline orchestrates file discovery, per-file conversion, and
// batch summary reporting. Files are processed strictly one after another;
// only chunk encoding inside a file runs in parallel.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/chunkmaster/internal/config"
	"github.com/backmassage/chunkmaster/internal/cpuset"
	"github.com/backmassage/chunkmaster/internal/display"
	"github.com/backmassage/chunkmaster/internal/logging"
)

// Run is the top-level batch entry point. It discovers files, applies the
// CPU budget, converts each file sequentially, applies the original-file
// disposal policy, and returns aggregate stats. A failed file never stops
// the batch; a startup failure (unresolvable output dir, discovery error)
// returns non-nil and the caller must not report success.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	var stats RunStats
	start := time.Now()

	outputDir, err := cfg.ResolveOutputDir()
	if err != nil {
		log.Errorf("%v", err)
		return stats, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Errorf("Cannot create output directory %s: %v", outputDir, err)
		return stats, err
	}

	files, err := Discover(cfg.InputPath, cfg.Recursive)
	if err != nil {
		log.Errorf("File discovery failed: %v", err)
		return stats, err
	}
	if len(files) == 0 {
		log.Warnf("No .ts files found in %s", cfg.InputPath)
		return stats, nil
	}
	stats.Total = len(files)

	workers := applyCPUBudget(cfg, log)
	logSettings(cfg, log, workers, outputDir, len(files))

	for i, path := range files {
		if ctx.Err() != nil {
			stats.Interrupted = true
			log.Warnf("Interrupted")
			break
		}
		stats.Current = i + 1

		log.Infof("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(path))
		originalSize := fileSize(path)

		result := Convert(ctx, cfg, log, path, outputDir, workers)
		if result.Success {
			stats.Succeeded++
			stats.RatioSum += result.CompressionRatio
			logSuccess(log, &result, originalSize)
			deleteOriginal(cfg, log, &stats, path, originalSize-result.SizeBytes)
		} else {
			stats.Failed++
			log.Errorf("Failed to convert %s: %v", filepath.Base(path), result.Err)
			if !cfg.KeepFailed {
				deleteOriginal(cfg, log, &stats, path, 0)
			}
		}
	}

	stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &stats, outputDir)
	return stats, nil
}

// applyCPUBudget derives the worker count from the configured core fraction
// and pins the process to that many cores where the platform allows it.
// When pinning is supported but fails, the run degrades to a single worker
// so an unthrottled process cannot exceed the requested budget.
func applyCPUBudget(cfg *config.Config, log *logging.Logger) int {
	workers := cpuset.Workers(cfg.CPULimit)
	outcome, err := cpuset.Pin(workers)
	switch outcome {
	case cpuset.PinApplied:
		log.Debugf("Pinned process to %d cores", workers)
	case cpuset.PinUnsupported:
		log.Debugf("CPU pinning not supported on this platform; using worker limit only")
	case cpuset.PinError:
		log.Warnf("CPU pinning failed (%v); falling back to 1 worker", err)
		workers = 1
	}
	return workers
}

// deleteOriginal removes a source file under --delete-original, counting the
// deletion and the reclaimed space. Deletion failures are warnings only.
func deleteOriginal(cfg *config.Config, log *logging.Logger, stats *RunStats, path string, reclaimed int64) {
	if !cfg.DeleteOriginal {
		return
	}
	if err := os.Remove(path); err != nil {
		log.Warnf("Could not delete original file %s: %v", path, err)
		return
	}
	stats.Deleted++
	if reclaimed > 0 {
		stats.SpaceReclaimed += reclaimed
	}
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// --- Logging helpers ---

func logSettings(cfg *config.Config, log *logging.Logger, workers int, outputDir string, fileCount int) {
	log.Infof("Found %d files to convert", fileCount)
	log.Infof("Output directory: %s", outputDir)
	log.Infof("CPU usage limit: %.0f%% (%d workers)", cfg.CPULimit*100, workers)
	log.Infof("Compression: %s", describeIntent(cfg))
	if cfg.Preset != config.PresetNone || cfg.TargetSizeMB > 0 {
		log.Infof("Quality level: %d (16=best, 28=worst)", cfg.Quality)
	}
	if cfg.DeleteOriginal {
		log.Infof("Delete original: on (keep failed: %v)", cfg.KeepFailed)
	}
	fmt.Println()
}

func describeIntent(cfg *config.Config) string {
	switch {
	case cfg.Preset != config.PresetNone:
		return string(cfg.Preset)
	case cfg.TargetSizeMB > 0:
		return fmt.Sprintf("target size %g MB", cfg.TargetSizeMB)
	default:
		return "disabled (maintaining original quality)"
	}
}

func logSuccess(log *logging.Logger, res *ConversionResult, originalSize int64) {
	log.Infof("Successfully converted: %s", filepath.Base(res.InputPath))
	if originalSize > 0 {
		log.Infof("  Original size: %s", display.FormatMB(originalSize))
	}
	log.Infof("  Output size: %s", display.FormatMB(res.SizeBytes))
	log.Infof("  Duration: %.1f seconds", res.Duration)
	if res.CompressionRatio > 0 {
		log.Infof("  Compression ratio: %s", display.FormatRatio(res.CompressionRatio))
	}
	log.Infof("  Location: %s", res.OutputPath)
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats, outputDir string) {
	log.Infof("==============================")
	log.Infof("Conversion Summary:")
	log.Infof("  Total files processed: %d", stats.Current)
	log.Infof("  Successful conversions: %d", stats.Succeeded)
	log.Infof("  Failed conversions: %d", stats.Failed)
	if stats.Succeeded > 0 {
		log.Infof("  Average compression ratio: %s", display.FormatRatio(stats.AverageRatio()))
	}
	log.Infof("  Total time elapsed: %.2f seconds", stats.Elapsed.Seconds())
	if stats.Total > 0 {
		log.Infof("  Average time per file: %.2f seconds", stats.AverageTime().Seconds())
	}
	if cfg.DeleteOriginal {
		log.Infof("  Files deleted: %d", stats.Deleted)
		log.Infof("  Space reclaimed: %s", display.FormatBytes(stats.SpaceReclaimed))
	}
	log.Infof("All converted files are stored in: %s", outputDir)
}
