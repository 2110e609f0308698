package timeline

import "math"

// FallbackLastDuration is used for the final entry when no total video
// duration is known, e.g. in the one-pass in-memory pipeline.
const FallbackLastDuration = 2.0

// Durations derives the display duration of each entry. Entry i lasts
// until entry i+1 begins; the final entry lasts until the end of the
// video, or FallbackLastDuration when total <= 0. Zero or negative
// results (timestamp jitter) clamp to one frame at the given fps.
func Durations(entries []Entry, total, fps float64) []float64 {
	if len(entries) == 0 {
		return nil
	}
	minDur := 1.0 / fps

	out := make([]float64, len(entries))
	for i := 0; i < len(entries)-1; i++ {
		out[i] = entries[i+1].Timestamp - entries[i].Timestamp
	}
	last := len(entries) - 1
	if total > 0 {
		out[last] = total - entries[last].Timestamp
	} else {
		out[last] = FallbackLastDuration
	}

	for i, d := range out {
		if d < minDur {
			out[i] = minDur
		}
	}
	return out
}

// RepeatCounts converts durations to integer frame-repeat counts at the
// target fps: max(1, round(d*fps)). The per-entry rounding error is
// bounded by half a frame interval.
func RepeatCounts(durations []float64, fps float64) []int {
	out := make([]int, len(durations))
	for i, d := range durations {
		n := int(math.Round(d * fps))
		if n < 1 {
			n = 1
		}
		out[i] = n
	}
	return out
}
