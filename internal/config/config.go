// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// PresetLevel selects a fixed compression preset. Empty means no preset.
type PresetLevel string

const (
	PresetNone   PresetLevel = ""       // No preset; default or target-size intent applies.
	PresetLight  PresetLevel = "light"  // Scale to 720p, 1500k video, 128k audio.
	PresetMedium PresetLevel = "medium" // Scale to 480p, 1000k video, 96k audio.
	PresetHigh   PresetLevel = "high"   // Scale to 360p, 500k video, 64k audio.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Quality bounds for the CRF-style quality setting (lower = better quality).
const (
	QualityMin     = 16
	QualityMax     = 28
	QualityDefault = 23
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Input selection (positional arg plus -o/-r).
	InputPath string // A .ts file or a directory containing .ts files.
	OutputDir string // Empty: sibling "results" directory next to the input.
	Recursive bool   // Walk subdirectories when InputPath is a directory.

	// Chunking.
	ChunkSize int // Seconds per chunk; 0 = derived from duration at runtime.

	// Resource throttling.
	CPULimit float64 // Fraction of logical cores to use (default 0.1).

	// Original-file disposal.
	DeleteOriginal bool // Remove sources after conversion.
	KeepFailed     bool // With DeleteOriginal: keep sources whose conversion failed.

	// Compression intent. At most one of Preset / TargetSizeMB may be active;
	// when neither is, the converter keeps the source quality (CRF only).
	Preset       PresetLevel
	TargetSizeMB float64
	Quality      int // CRF 16-28, default 23.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode
	LogFile   string // Optional append-to log file path.
}

// DefaultConfig returns a Config with all defaults set. Used as the base
// before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		CPULimit:  0.1,
		Quality:   QualityDefault,
		ColorMode: ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks field ranges and the mutual exclusion of compression
// intents. ParseFlags already rejects combined intent flags on the command
// line; Validate re-checks the resulting values so a Config built in code
// gets the same guarantees.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("need an input file or directory")
	}
	if c.Quality < QualityMin || c.Quality > QualityMax {
		return fmt.Errorf("quality must be %d-%d (got %d)", QualityMin, QualityMax, c.Quality)
	}
	if c.CPULimit <= 0 || c.CPULimit > 1 {
		return fmt.Errorf("cpu-limit must be in (0, 1] (got %g)", c.CPULimit)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk-size must be positive (got %d)", c.ChunkSize)
	}
	if c.TargetSizeMB < 0 {
		return fmt.Errorf("target-size must be positive (got %g)", c.TargetSizeMB)
	}
	if c.Preset != PresetNone && c.TargetSizeMB > 0 {
		return errors.New("--compress and --target-size are mutually exclusive")
	}
	switch c.Preset {
	case PresetNone, PresetLight, PresetMedium, PresetHigh:
		// valid
	default:
		return fmt.Errorf("invalid compression level %q (use 'light', 'medium' or 'high')", c.Preset)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	if c.KeepFailed && !c.DeleteOriginal {
		return errors.New("--keep-failed only makes sense with --delete-original")
	}
	return nil
}

// ResolveOutputDir returns the configured output directory, or the default
// sibling "results" directory next to the (absolute) input path.
func (c *Config) ResolveOutputDir() (string, error) {
	if c.OutputDir != "" {
		return c.OutputDir, nil
	}
	abs, err := filepath.Abs(c.InputPath)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	return filepath.Join(filepath.Dir(abs), "results"), nil
}
