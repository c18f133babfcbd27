// Package probe provides ffprobe-based media inspection. A single JSON call
// per file yields everything the planners need: duration, dimensions, codec,
// bitrate, and container size.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Probe failure modes the pipeline distinguishes in its messages.
var (
	ErrNoVideoStream = errors.New("no video stream")
	ErrNoDuration    = errors.New("zero or unparseable duration")
)

// Probe runs a single ffprobe JSON call against path and returns the parsed
// result. The file is only inspected at container/stream level; nothing is
// decoded.
func Probe(ctx context.Context, path string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a MediaInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*MediaInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildInfo(&raw)
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index       int            `json:"index"`
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	BitRate     string         `json:"bit_rate"`
	Disposition map[string]int `json:"disposition"`
}

// --- Conversion from wire types to the domain type ---

func buildInfo(raw *ffprobeOutput) (*MediaInfo, error) {
	var video *ffprobeStream
	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType == "video" && s.Disposition["attached_pic"] != 1 {
			video = s
			break
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	duration := parseFloat(raw.Format.Duration)
	if duration <= 0 {
		return nil, ErrNoDuration
	}

	info := &MediaInfo{
		Duration:   duration,
		Width:      video.Width,
		Height:     video.Height,
		VideoCodec: video.CodecName,
		BitRate:    parseInt64(video.BitRate),
		Size:       parseInt64(raw.Format.Size),
	}
	// Stream-level bitrate is often missing for transport streams; fall back
	// to the container bitrate.
	if info.BitRate == 0 {
		info.BitRate = parseInt64(raw.Format.BitRate)
	}
	return info, nil
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
