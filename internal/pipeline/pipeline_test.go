package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/chunkmaster/internal/config"
	"github.com/backmassage/chunkmaster/internal/logging"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "show.ts")
	touch(t, file)

	files, err := Discover(file, false)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)

	// A single file is taken as-is even without a .ts extension.
	other := filepath.Join(dir, "clip.mpg")
	touch(t, other)
	files, err = Discover(other, false)
	require.NoError(t, err)
	assert.Equal(t, []string{other}, files)
}

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.ts"))
	touch(t, filepath.Join(dir, "a.ts"))
	touch(t, filepath.Join(dir, "upper.TS"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "deep.ts"))

	t.Run("non-recursive", func(t *testing.T) {
		files, err := Discover(dir, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.ts"),
			filepath.Join(dir, "b.ts"),
			filepath.Join(dir, "upper.TS"),
		}, files)
	})

	t.Run("recursive", func(t *testing.T) {
		files, err := Discover(dir, true)
		require.NoError(t, err)
		assert.Contains(t, files, filepath.Join(dir, "nested", "deep.ts"))
		assert.Len(t, files, 4)
		assert.IsIncreasing(t, files)
	})
}

func TestDiscover_MissingInput(t *testing.T) {
	_, err := Discover("/no/such/path", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input not found")
}

func TestIsTransportStream(t *testing.T) {
	assert.True(t, isTransportStream("show.ts"))
	assert.True(t, isTransportStream("SHOW.TS"))
	assert.True(t, isTransportStream("/deep/path/show.Ts"))
	assert.False(t, isTransportStream("show.mp4"))
	assert.False(t, isTransportStream("show.ts.bak"))
	assert.False(t, isTransportStream("ts"))
}

func TestOutputName(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	assert.Equal(t, "show_20260314_150926.mp4", outputName("/media/in/show.ts", now))
	assert.Equal(t, "a.b_20260314_150926.mp4", outputName("a.b.ts", now))
	assert.Equal(t, "noext_20260314_150926.mp4", outputName("noext", now))
}

func TestChunkPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/w", "chunk_007.ts"), chunkPath("/w", 7))
	assert.Equal(t, filepath.Join("/w", "converted_012.mp4"), encodedPath("/w", 12))
}

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	log, err := logging.New(&cfg)
	require.NoError(t, err)
	log.SetOutput(io.Discard)
	return log
}

func TestRun_StartupErrorSurfaces(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.ts")

	stats, err := Run(context.Background(), &cfg, newTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input not found")
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Failed)
}

func TestRun_InterruptedBeforeFirstFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "show.ts"))

	cfg := config.DefaultConfig()
	cfg.InputPath = dir
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.CPULimit = 1.0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Run(ctx, &cfg, newTestLogger(t))
	require.NoError(t, err)
	assert.True(t, stats.Interrupted)
	assert.Equal(t, 1, stats.Total)
	// The never-processed file must not count as processed.
	assert.Zero(t, stats.Current)
	assert.Zero(t, stats.Succeeded)
	assert.Zero(t, stats.Failed)
}

func TestRunStats_AverageRatio(t *testing.T) {
	s := &RunStats{}
	assert.Zero(t, s.AverageRatio())

	// Failures contribute nothing to the average.
	s.Succeeded = 2
	s.Failed = 3
	s.RatioSum = 5.0
	assert.InDelta(t, 2.5, s.AverageRatio(), 1e-9)
}

func TestRunStats_AverageTime(t *testing.T) {
	s := &RunStats{}
	assert.Zero(t, s.AverageTime())

	s.Total = 4
	s.Elapsed = 2 * time.Minute
	assert.Equal(t, 30*time.Second, s.AverageTime())
}
