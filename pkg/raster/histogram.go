package raster

import (
	"math"
)

// HistogramData holds per-channel bin counts over the buffer's sample
// domain. It is purely visual feedback for the level panel; the tone-map
// math never consults it.
type HistogramData struct {
	Bins     int
	Min, Max float64 // sample domain the bins span
	Counts   [][]int // Counts[channel][bin]
}

// ComputeHistogram bins the buffer's samples per channel over the buffer's
// [MinVal, MaxVal] domain. bins <= 0 falls back to 64. A buffer whose
// samples are all one value lands everything in bin 0 with a zero-width
// domain rather than dividing by zero.
func ComputeHistogram(b *Buffer, bins int) HistogramData {
	if bins <= 0 {
		bins = 64
	}
	hd := HistogramData{Bins: bins}
	if b == nil || len(b.Pix) == 0 {
		return hd
	}
	hd.Min = b.MinVal
	hd.Max = b.MaxVal
	hd.Counts = make([][]int, b.Channels)
	for c := range hd.Counts {
		hd.Counts[c] = make([]int, bins)
	}

	span := hd.Max - hd.Min
	if span == 0 {
		for c := 0; c < b.Channels; c++ {
			hd.Counts[c][0] = b.H * b.W
		}
		return hd
	}
	scale := float64(bins) / span
	nc := b.Channels
	for i, v := range b.Pix {
		idx := int(math.Floor((float64(v) - hd.Min) * scale))
		if idx >= bins {
			idx = bins - 1 // the exact-max sample rounds up past the last bin
		}
		if idx < 0 {
			idx = 0
		}
		hd.Counts[i%nc][idx]++
	}
	return hd
}

// MaxCount returns the largest single bin count across channels, used to
// scale bar rendering.
func (hd HistogramData) MaxCount() int {
	max := 0
	for _, ch := range hd.Counts {
		for _, n := range ch {
			if n > max {
				max = n
			}
		}
	}
	return max
}

// BinValue returns the sample value at the center of bin i.
func (hd HistogramData) BinValue(i int) float64 {
	if hd.Bins == 0 {
		return hd.Min
	}
	width := (hd.Max - hd.Min) / float64(hd.Bins)
	return hd.Min + (float64(i)+0.5)*width
}
