// Package ffmpeg builds and executes the external engine commands: chunk
// extraction (stream copy), chunk encoding, and lossless concatenation.
// Argument construction is kept separate from execution so the exact
// command lines are unit-testable without a binary.
package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/backmassage/chunkmaster/internal/planner"
)

// BuildExtractArgs constructs the stream-copy extraction command for one
// chunk. Keyframes are forced at the given interval so chunk boundaries cut
// cleanly, and negative timestamps from the transport stream are normalized.
func BuildExtractArgs(input string, spec planner.ChunkSpec, keyframeInterval float64, output string) []string {
	return []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-ss", formatSeconds(spec.Start),
		"-i", input,
		"-t", formatSeconds(spec.Length),
		"-c", "copy",
		"-force_key_frames", fmt.Sprintf("expr:gte(t,n_forced*%s)", formatSeconds(keyframeInterval)),
		"-avoid_negative_ts", "1",
		"-y", output,
	}
}

// BuildEncodeArgs constructs the encode command for one chunk from an
// immutable plan. chunkDuration feeds the per-chunk bitrate derivation of
// target-size plans and is ignored by the other intents.
func BuildEncodeArgs(input string, plan planner.EncodingPlan, chunkDuration float64, output string) []string {
	args := []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-i", input,
		"-c:v", plan.VideoCodec,
	}
	args = append(args, plan.VideoParams...)
	args = append(args, plan.PerChunkParams(chunkDuration)...)
	args = append(args, "-c:a", plan.AudioCodec)
	args = append(args, plan.AudioParams...)
	args = append(args,
		"-threads", strconv.Itoa(plan.Threads),
		"-y", output,
	)
	return args
}

// BuildConcatArgs constructs the merge command: the concat demuxer over an
// ordered list file, stream copy, and a fast-start MP4 layout.
func BuildConcatArgs(listPath, output string) []string {
	return []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		"-y", output,
	}
}

// formatSeconds renders a duration for ffmpeg without exponent notation and
// without trailing noise (30 rather than 30.000000).
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
