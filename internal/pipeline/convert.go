package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/backmassage/chunkmaster/internal/config"
	"github.com/backmassage/chunkmaster/internal/display"
	"github.com/backmassage/chunkmaster/internal/executor"
	"github.com/backmassage/chunkmaster/internal/ffmpeg"
	"github.com/backmassage/chunkmaster/internal/logging"
	"github.com/backmassage/chunkmaster/internal/planner"
	"github.com/backmassage/chunkmaster/internal/probe"
)

// Stage names the pipeline phases; a failed conversion's error message is
// prefixed with the stage that produced it.
type Stage string

const (
	StageProbing  Stage = "probing"
	StagePlanning Stage = "planning"
	StageChunking Stage = "chunking"
	StageEncoding Stage = "encoding"
	StageMerging  Stage = "merging"
)

// ConversionResult is the terminal outcome of one conversion run.
type ConversionResult struct {
	Success          bool
	InputPath        string
	OutputPath       string  // Set on success.
	SizeBytes        int64   // Output size, set on success.
	Duration         float64 // Source duration in seconds (when probed).
	CompressionRatio float64 // Input size / output size, set on success.
	Err              error   // Set on failure, carries the stage prefix.
}

// Convert runs the full pipeline for one input file:
//
//	probing → planning → chunking → encoding → merging
//
// Any stage failure short-circuits to a failed result; the per-run temporary
// workspace is removed on every exit path. The context stops work between
// engine invocations, never mid-invocation.
func Convert(ctx context.Context, cfg *config.Config, log *logging.Logger, inputPath, outputDir string, workers int) ConversionResult {
	res := ConversionResult{InputPath: inputPath}
	fail := func(stage Stage, err error) ConversionResult {
		res.Success = false
		res.Err = fmt.Errorf("%s: %w", stage, err)
		return res
	}

	// --- Probing ---
	info, err := probe.Probe(ctx, inputPath)
	if err != nil {
		return fail(StageProbing, err)
	}
	res.Duration = info.Duration
	log.Infof("  Video: %s | %s | %.1f seconds",
		info.Resolution(), info.VideoCodec, info.Duration)

	// --- Planning ---
	intent := planner.IntentFromConfig(cfg)
	plan, err := planner.BuildPlan(info, intent, cfg.Quality, workers)
	if err != nil {
		return fail(StagePlanning, err)
	}
	if intent.Kind == planner.IntentTargetSize {
		video, _ := planner.TargetBitrate(info.Duration, intent.TargetSizeMB)
		log.Debugf("  Target bitrate: %s overall", display.FormatBitrateLabel(video/1000))
	}

	chunkDuration := float64(cfg.ChunkSize)
	if chunkDuration <= 0 {
		chunkDuration = planner.DefaultChunkDuration(info.Duration)
	}
	chunks := planner.PlanChunks(info.Duration, chunkDuration)
	if len(chunks) == 0 {
		return fail(StagePlanning, fmt.Errorf("no chunks for duration %gs", info.Duration))
	}
	log.Debugf("  Plan: %d chunks of %gs, %d workers", len(chunks), chunkDuration, workers)

	// --- Chunking: fresh per-run workspace, removed on every exit path ---
	runID := strings.Split(uuid.NewString(), "-")[0]
	workDir := filepath.Join(os.TempDir(), "chunkmaster-"+runID)
	chunkDir := filepath.Join(workDir, "chunks")
	encodedDir := filepath.Join(workDir, "encoded")
	for _, dir := range []string{chunkDir, encodedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(StageChunking, err)
		}
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warnf("Could not remove temp dir %s: %v", workDir, err)
		}
	}()

	// Extraction is sequential: every call reads the same source file.
	keyframeInterval := planner.KeyframeInterval(chunkDuration)
	splitBar := newBar(cfg, len(chunks), "Splitting video")
	for _, spec := range chunks {
		if err := ctx.Err(); err != nil {
			return fail(StageChunking, err)
		}
		if err := ffmpeg.ExtractChunk(ctx, inputPath, spec, keyframeInterval, chunkPath(chunkDir, spec.Index)); err != nil {
			return fail(StageChunking, err)
		}
		barAdd(splitBar)
	}
	barFinish(splitBar)

	// --- Encoding: the only parallel region ---
	encodeBar := newBar(cfg, len(chunks), "Converting chunks")
	encode := func(ctx context.Context, spec planner.ChunkSpec) executor.Result {
		src := chunkPath(chunkDir, spec.Index)
		out := encodedPath(encodedDir, spec.Index)
		ok := ffmpeg.EncodeChunk(ctx, log, src, plan, spec.Length, out)
		if ok {
			barAdd(encodeBar)
		}
		return executor.Result{Index: spec.Index, SourcePath: src, OutputPath: out, OK: ok}
	}
	results, err := executor.RunAll(ctx, chunks, workers, encode)
	barFinish(encodeBar)
	if err != nil {
		return fail(StageEncoding, err)
	}

	// --- Merging ---
	outputPath := filepath.Join(outputDir, outputName(inputPath, time.Now()))
	encoded := make([]string, len(results))
	for i, r := range results {
		encoded[i] = r.OutputPath
	}
	if err := ffmpeg.Concat(ctx, encoded, outputPath); err != nil {
		os.Remove(outputPath)
		return fail(StageMerging, err)
	}

	// --- Done ---
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return fail(StageMerging, err)
	}
	res.Success = true
	res.OutputPath = outputPath
	res.SizeBytes = outInfo.Size()
	if inSize := inputSize(inputPath, info); inSize > 0 && outInfo.Size() > 0 {
		res.CompressionRatio = float64(inSize) / float64(outInfo.Size())
	}
	return res
}

// outputName derives "<stem>_<timestamp>.mp4" from the input filename.
func outputName(inputPath string, now time.Time) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s.mp4", stem, now.Format("20060102_150405"))
}

func chunkPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("chunk_%03d.ts", index))
}

func encodedPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("converted_%03d.mp4", index))
}

// inputSize prefers the probed container size and falls back to a stat call.
func inputSize(path string, info *probe.MediaInfo) int64 {
	if info.Size > 0 {
		return info.Size
	}
	if fi, err := os.Stat(path); err == nil {
		return fi.Size()
	}
	return 0
}

// --- Progress bars (TTY only; verbose logging replaces them) ---

func newBar(cfg *config.Config, total int, desc string) *progressbar.ProgressBar {
	if cfg.Verbose || !logging.StdoutIsTerminal() {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetItsString("chunk"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func barFinish(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
