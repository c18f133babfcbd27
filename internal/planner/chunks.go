package planner

import "math"

// Chunk duration policy. When the user does not fix a chunk size, one tenth
// of the source duration is used, clamped so short files still get workable
// chunks and long films do not produce hour-long ones.
const (
	MinChunkSeconds = 30
	MaxChunkSeconds = 300

	// Forced-keyframe interval cap for extraction; keyframes at least this
	// often guarantee clean cut points inside every chunk.
	keyframeIntervalCap = 10
)

// DefaultChunkDuration returns clamp(duration/10, 30, 300) seconds.
func DefaultChunkDuration(duration float64) float64 {
	return clampFloat(duration/10, MinChunkSeconds, MaxChunkSeconds)
}

// KeyframeInterval returns the forced-keyframe interval used during chunk
// extraction: the chunk duration itself, capped at 10 seconds.
func KeyframeInterval(chunkDuration float64) float64 {
	return math.Min(chunkDuration, keyframeIntervalCap)
}

// PlanChunks computes the ordered chunk sequence covering [0, duration).
// It returns ceil(duration/chunkDuration) entries with no gaps and no
// overlaps; the last chunk absorbs the remainder and may be shorter.
// A non-positive duration or chunk duration yields an empty plan.
func PlanChunks(duration, chunkDuration float64) []ChunkSpec {
	if duration <= 0 || chunkDuration <= 0 {
		return nil
	}
	count := int(math.Ceil(duration / chunkDuration))
	chunks := make([]ChunkSpec, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * chunkDuration
		length := chunkDuration
		if start+length > duration {
			length = duration - start
		}
		chunks = append(chunks, ChunkSpec{Index: i, Start: start, Length: length})
	}
	return chunks
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
