package probe

import "fmt"

// MediaInfo holds the per-file metadata consumed by the bitrate and chunk
// planners. It is produced once per input file and never mutated afterwards.
type MediaInfo struct {
	Duration   float64 // Seconds; always > 0 after a successful probe.
	Width      int
	Height     int
	VideoCodec string
	BitRate    int64 // Bits/sec; 0 when neither stream nor container reports one.
	Size       int64 // Container size in bytes (used for the compression ratio).
}

// Pixels returns the pixel count of a frame, the quantity the bitrate tiers
// are keyed on.
func (m *MediaInfo) Pixels() int {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return m.Width * m.Height
}

// Resolution returns "WxH", or "unknown" when dimensions are absent.
func (m *MediaInfo) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}
