package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/backmassage/chunkmaster/internal/planner"
)

// ExecResult holds the outcome of a single engine invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// run executes a prebuilt argument vector. On Unix the process is started
// under "nice -n 19" so encoding stays out of the way of interactive work.
// Stderr is captured for diagnostics; the engine's exit status plus the
// produced file are the only success signals the callers consume.
func run(ctx context.Context, args []string) ExecResult {
	if runtime.GOOS != "windows" {
		args = append([]string{"nice", "-n", "19"}, args...)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// ExtractChunk copies one time-slice out of the source without re-encoding.
// Extraction reads the source sequentially, so callers invoke this one chunk
// at a time, in index order.
func ExtractChunk(ctx context.Context, source string, spec planner.ChunkSpec, keyframeInterval float64, output string) error {
	res := run(ctx, BuildExtractArgs(source, spec, keyframeInterval, output))
	if res.Err != nil {
		return fmt.Errorf("extract chunk %d: %w%s", spec.Index, res.Err, stderrTail(res.Stderr))
	}
	if !fileNonEmpty(output) {
		return fmt.Errorf("extract chunk %d: engine produced no output%s", spec.Index, stderrTail(res.Stderr))
	}
	return nil
}

// EncodeChunk converts one extracted chunk using the plan's parameters.
// It never returns an error: success means the output file exists and is
// non-empty after the call, and every failure mode collapses to false.
// Diagnostic detail goes to the debug log only.
func EncodeChunk(ctx context.Context, log logrus.FieldLogger, chunkPath string, plan planner.EncodingPlan, chunkDuration float64, output string) bool {
	res := run(ctx, BuildEncodeArgs(chunkPath, plan, chunkDuration, output))
	if res.Err != nil {
		log.Debugf("encode %s: %v%s", filepath.Base(chunkPath), res.Err, stderrTail(res.Stderr))
		return false
	}
	if !fileNonEmpty(output) {
		log.Debugf("encode %s: engine produced no output%s", filepath.Base(chunkPath), stderrTail(res.Stderr))
		return false
	}
	return true
}

// Concat merges the already-encoded chunks, in the exact order given, into
// one MP4 without re-encoding.
func Concat(ctx context.Context, chunkPaths []string, output string) error {
	for _, p := range chunkPaths {
		if !fileNonEmpty(p) {
			return fmt.Errorf("merge: chunk file missing or empty: %s", p)
		}
	}

	listPath, err := writeConcatList(chunkPaths, filepath.Dir(output))
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	defer os.Remove(listPath)

	res := run(ctx, BuildConcatArgs(listPath, output))
	if res.Err != nil {
		return fmt.Errorf("merge: %w%s", res.Err, stderrTail(res.Stderr))
	}
	if !fileNonEmpty(output) {
		return fmt.Errorf("merge: engine produced no output%s", stderrTail(res.Stderr))
	}
	return nil
}

// writeConcatList writes the concat demuxer input file listing the chunks in
// order. Single quotes in paths are escaped per the demuxer's quoting rules.
func writeConcatList(paths []string, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		escaped := strings.ReplaceAll(p, "'", `'\''`)
		if _, err := fmt.Fprintf(f, "file '%s'\n", escaped); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func fileNonEmpty(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}

// stderrTail formats the last lines of engine stderr for inclusion in an
// error or debug message. Empty stderr yields an empty string.
func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return ": " + strings.Join(lines, " | ")
}
