package config

// This file implements CLI flag parsing and help text on top of spf13/pflag.
// The compression flags (--no-compress, --compress, --target-size) form a
// mutually exclusive group enforced at parse time via pflag's Changed checks.

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// ParseFlags parses args (normally os.Args[1:]) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil (unknown flag,
// missing positional arg, combined exclusive flags).
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := pflag.NewFlagSet("chunkmaster", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() { printUsage(fs, version) }

	fs.StringVarP(&cfg.OutputDir, "output", "o", "", "Output directory (default: sibling 'results' dir)")
	fs.BoolVarP(&cfg.Recursive, "recursive", "r", false, "Recursively process directories")
	fs.IntVarP(&cfg.ChunkSize, "chunk-size", "c", 0, "Chunk size in seconds (auto-derived if not set)")
	fs.Float64Var(&cfg.CPULimit, "cpu-limit", cfg.CPULimit, "CPU usage limit as core fraction (0.1 = 10%)")
	fs.BoolVar(&cfg.DeleteOriginal, "delete-original", false, "Delete original files after successful conversion")
	fs.BoolVar(&cfg.KeepFailed, "keep-failed", false, "Keep original files even if conversion fails")

	var noCompress bool
	fs.BoolVar(&noCompress, "no-compress", false, "Disable compression (default)")
	fs.Var(&presetValue{&cfg.Preset}, "compress", "Compression level: light | medium | high")
	fs.Float64Var(&cfg.TargetSizeMB, "target-size", 0, "Target output size in MB")
	fs.IntVarP(&cfg.Quality, "quality", "q", cfg.Quality, "Video quality 16-28, lower is better")

	var forceColor, noColor bool
	fs.BoolVar(&forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output (debug logging, raw ffmpeg errors)")
	fs.StringVarP(&cfg.LogFile, "log", "l", "", "Append logs to file")

	var showVersion, showHelp bool
	fs.BoolVarP(&showVersion, "version", "V", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "chunkmaster v"+version)
		os.Exit(0)
	}

	if err := checkExclusiveIntent(fs, noCompress); err != nil {
		return err
	}

	if noColor {
		cfg.ColorMode = ColorNever
	} else if forceColor {
		cfg.ColorMode = ColorAlways
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("need exactly one input file or directory")
	}
	cfg.InputPath = NormalizeDirArg(rest[0])
	return nil
}

// checkExclusiveIntent rejects combinations of the three compression intent
// flags. --no-compress is the default, so passing it alone is a no-op.
func checkExclusiveIntent(fs *pflag.FlagSet, noCompress bool) error {
	set := 0
	for _, name := range []string{"no-compress", "compress", "target-size"} {
		if fs.Changed(name) {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("--no-compress, --compress and --target-size are mutually exclusive")
	}
	_ = noCompress // Default intent; nothing to record.
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *pflag.FlagSet, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "Chunkmaster v" + version + " - chunked TS to MP4 converter"},
		{"", ""},
		{"  chunkmaster [OPTIONS] <input>", ""},
		{"", ""},
		{"Input & output", ""},
		{"  <input>", "A .ts file, or a directory of .ts files"},
		{"  -o, --output <dir>", "Output directory (default: sibling 'results' dir)"},
		{"  -r, --recursive", "Recursively process directories"},
		{"", ""},
		{"Chunking & resources", ""},
		{"  -c, --chunk-size <seconds>", "Chunk size (default: duration/10, clamped to 30-300)"},
		{"  --cpu-limit <fraction>", "Fraction of cores to use (default: 0.1)"},
		{"", ""},
		{"Compression (mutually exclusive)", ""},
		{"  --no-compress", "Keep source quality (default)"},
		{"  --compress <level>", "light (720p) | medium (480p) | high (360p)"},
		{"  --target-size <MB>", "Derive bitrate from a desired output size"},
		{"  -q, --quality <16-28>", "CRF quality, lower is better (default: 23)"},
		{"", ""},
		{"Originals", ""},
		{"  --delete-original", "Delete sources after successful conversion"},
		{"  --keep-failed", "With --delete-original: keep failed sources"},
		{"", ""},
		{"Display & logging", ""},
		{"  --color / --no-color", "Force / disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(os.Stderr)
		case l.desc == "":
			fmt.Fprintln(os.Stderr, l.flags)
		case l.flags == "":
			fmt.Fprintln(os.Stderr, l.desc)
		default:
			padding := col1 - len(l.flags)
			if padding < 1 {
				padding = 1
			}
			fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// presetValue adapts PresetLevel to pflag.Value so --compress validates its
// argument during parsing.
type presetValue struct{ p *PresetLevel }

func (v *presetValue) String() string { return string(*v.p) }
func (v *presetValue) Type() string   { return "level" }
func (v *presetValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "light":
		*v.p = PresetLight
	case "medium":
		*v.p = PresetMedium
	case "high":
		*v.p = PresetHigh
	default:
		return fmt.Errorf("invalid compression level %q (use 'light', 'medium' or 'high')", s)
	}
	return nil
}
