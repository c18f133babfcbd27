package planner

import "github.com/backmassage/chunkmaster/internal/config"

// IntentKind discriminates the closed set of compression intents.
type IntentKind int

const (
	IntentDefault    IntentKind = iota // Keep source quality (CRF only, bitrate tier by resolution).
	IntentPreset                       // Fixed scale/bitrate/audio preset (light/medium/high).
	IntentTargetSize                   // Bitrate derived backward from a desired output size.
)

// Intent is the user's compression intent. Exactly one variant is active;
// construct values through the helper functions, not struct literals.
type Intent struct {
	Kind         IntentKind
	Preset       config.PresetLevel // Set when Kind == IntentPreset.
	TargetSizeMB float64            // Set when Kind == IntentTargetSize.
}

// DefaultIntent keeps source quality and lets the resolution tiers pick a
// bitrate ceiling.
func DefaultIntent() Intent { return Intent{Kind: IntentDefault} }

// PresetIntent applies one of the fixed compression presets.
func PresetIntent(level config.PresetLevel) Intent {
	return Intent{Kind: IntentPreset, Preset: level}
}

// TargetSizeIntent derives bitrate from a desired total output size in MB.
func TargetSizeIntent(mb float64) Intent {
	return Intent{Kind: IntentTargetSize, TargetSizeMB: mb}
}

// IntentFromConfig maps the validated CLI configuration onto an Intent.
// Config.Validate guarantees preset and target size are not both set.
func IntentFromConfig(cfg *config.Config) Intent {
	switch {
	case cfg.Preset != config.PresetNone:
		return PresetIntent(cfg.Preset)
	case cfg.TargetSizeMB > 0:
		return TargetSizeIntent(cfg.TargetSizeMB)
	default:
		return DefaultIntent()
	}
}

// EncodingPlan holds the complete set of encoder parameters for one input
// file. It is assembled once by BuildPlan and passed by value into the chunk
// encoder, so no state leaks between files or chunks.
type EncodingPlan struct {
	VideoCodec  string   // "libx264"
	AudioCodec  string   // "aac"
	VideoParams []string // Scale/profile/bitrate/CRF flags in ffmpeg argument order.
	AudioParams []string // Channel/sample-rate/bitrate flags.
	Threads     int      // Encoder thread hint; always >= 1.

	// Target-size plans derive per-chunk bitrates from these; both are zero
	// for the other intents.
	TargetSizeMB  float64
	TotalDuration float64 // Seconds; threaded in from the probe, never stashed globally.
}

// PerChunkParams returns the bitrate flags for one chunk of a target-size
// plan: the chunk's proportional share of the target, minus a fixed audio
// allowance, floored at the minimum video bitrate. Nil for other intents.
func (p EncodingPlan) PerChunkParams(chunkDuration float64) []string {
	if p.TargetSizeMB <= 0 || chunkDuration <= 0 {
		return nil
	}
	shareMB := p.TargetSizeMB * chunkDuration / p.TotalDuration
	video, audio := TargetBitrate(chunkDuration, shareMB)
	return []string{
		"-b:v", itoa64(video),
		"-maxrate", itoa64(video * 3 / 2),
		"-bufsize", itoa64(video * 2),
		"-b:a", itoa64(audio),
	}
}

// ChunkSpec is one entry of the ordered chunk sequence covering the source.
type ChunkSpec struct {
	Index  int
	Start  float64 // Seconds from the beginning of the source.
	Length float64 // Seconds; the last chunk may be shorter than the rest.
}
