// Package planner derives encoding parameters and chunk boundaries from
// probe data and the user's compression intent. Everything here is pure
// computation; the ffmpeg package turns plans into processes.
package planner

import (
	"fmt"
	"strconv"

	"github.com/backmassage/chunkmaster/internal/config"
	"github.com/backmassage/chunkmaster/internal/probe"
)

// Resolution thresholds for the default-intent bitrate tiers, in pixels.
const (
	pixels1080p = 2073600 // 1920x1080
	pixels720p  = 921600  // 1280x720
)

// Target-size arithmetic constants.
const (
	audioAllowanceBps = 128_000 // Fixed audio budget subtracted from the share.
	minVideoBps       = 500_000 // Video bitrate floor.
)

// presetSettings is one row of the fixed compression preset table.
type presetSettings struct {
	scaleHeight  int
	videoBitrate string
	maxRate      string
	bufSize      string
	audioBitrate string
}

var presetTable = map[config.PresetLevel]presetSettings{
	config.PresetLight:  {720, "1500k", "2000k", "2000k", "128k"},
	config.PresetMedium: {480, "1000k", "1500k", "1500k", "96k"},
	config.PresetHigh:   {360, "500k", "700k", "700k", "64k"},
}

// BuildPlan produces the complete EncodingPlan for one input file.
//
// Flow:
//  1. Default intent: base x264 params + CRF, profile/level by resolution,
//     bitrate ceiling by pixel-count tier
//  2. Preset intent: fixed scale/bitrate/audio row from the preset table
//  3. Target-size intent: carry target and duration for per-chunk derivation
//
// The only failure mode is a non-positive duration under the target-size
// intent, where the proportional share would divide by zero.
func BuildPlan(info *probe.MediaInfo, intent Intent, quality, threads int) (EncodingPlan, error) {
	if threads < 1 {
		threads = 1
	}
	plan := EncodingPlan{
		VideoCodec: "libx264",
		AudioCodec: "aac",
		Threads:    threads,
	}

	switch intent.Kind {
	case IntentDefault:
		plan.VideoParams = defaultVideoParams(info, quality)
		plan.AudioParams = []string{"-ac", "2", "-ar", "44100"}

	case IntentPreset:
		s, ok := presetTable[intent.Preset]
		if !ok {
			return EncodingPlan{}, fmt.Errorf("unknown compression level %q", intent.Preset)
		}
		plan.VideoParams = []string{
			"-vf", fmt.Sprintf("scale=-1:%d", s.scaleHeight),
			"-b:v", s.videoBitrate,
			"-maxrate", s.maxRate,
			"-bufsize", s.bufSize,
		}
		plan.AudioParams = []string{"-ac", "2", "-ar", "44100", "-b:a", s.audioBitrate}

	case IntentTargetSize:
		if info.Duration <= 0 {
			return EncodingPlan{}, fmt.Errorf("target-size plan needs a positive duration (got %g)", info.Duration)
		}
		plan.TargetSizeMB = intent.TargetSizeMB
		plan.TotalDuration = info.Duration
		plan.AudioParams = []string{"-ac", "2", "-ar", "44100"}

	default:
		return EncodingPlan{}, fmt.Errorf("unknown intent kind %d", intent.Kind)
	}

	return plan, nil
}

// defaultVideoParams builds the no-compression parameter list: fast x264
// settings with the user CRF, an H.264 profile matched to the resolution,
// and a bitrate ceiling for HD content. SD content stays CRF-only.
func defaultVideoParams(info *probe.MediaInfo, quality int) []string {
	params := []string{
		"-preset", "faster",
		"-tune", "fastdecode",
		"-movflags", "+faststart",
		"-crf", strconv.Itoa(quality),
	}

	if info.Width >= 1920 || info.Height >= 1080 {
		params = append(params, "-profile:v", "high", "-level", "4.1")
	} else {
		params = append(params, "-profile:v", "main", "-level", "3.1")
	}

	switch pixels := info.Pixels(); {
	case pixels > pixels1080p:
		params = append(params, "-b:v", "5000k", "-maxrate", "7500k", "-bufsize", "10000k")
	case pixels > pixels720p:
		params = append(params, "-b:v", "2500k", "-maxrate", "4000k", "-bufsize", "5000k")
	}
	return params
}

// TargetBitrate converts a per-chunk size budget into video and audio
// bitrates: total bits over duration, minus the fixed audio allowance,
// floored at the minimum video bitrate.
func TargetBitrate(durationSec, targetSizeMB float64) (videoBps, audioBps int64) {
	targetBits := targetSizeMB * 8 * 1024 * 1024
	total := int64(targetBits / durationSec)
	videoBps = total - audioAllowanceBps
	if videoBps < minVideoBps {
		videoBps = minVideoBps
	}
	return videoBps, audioAllowanceBps
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
