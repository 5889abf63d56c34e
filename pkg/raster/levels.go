package raster

import (
	"image"
	"math"
)

// LevelRange is the (Lo, Hi) window used to linearly remap sample values to
// display intensity. The window is independent of the isoline marker and of
// the histogram; it only drives tone mapping.
type LevelRange struct {
	Lo, Hi float64
}

// DefaultRange derives the range from the buffer's global sample extremes.
func DefaultRange(b *Buffer) LevelRange {
	if b == nil {
		return LevelRange{0, 1}
	}
	return LevelRange{Lo: b.MinVal, Hi: b.MaxVal}
}

// Normalized returns the range with Lo <= Hi, swapping if a caller handed in
// an inverted pair (tolerates inverted drag gestures instead of failing).
func (r LevelRange) Normalized() LevelRange {
	if r.Lo > r.Hi {
		return LevelRange{Lo: r.Hi, Hi: r.Lo}
	}
	return r
}

// Valid reports whether both endpoints are finite numbers.
func (r LevelRange) Valid() bool {
	return !math.IsNaN(r.Lo) && !math.IsNaN(r.Hi) &&
		!math.IsInf(r.Lo, 0) && !math.IsInf(r.Hi, 0)
}

// Map remaps a raw sample into [0,1] through the window:
// clamp((s-lo)/(hi-lo), 0, 1). A collapsed window (Hi == Lo) maps every
// sample to 0.5 rather than dividing by zero.
func (r LevelRange) Map(s float64) float64 {
	rr := r.Normalized()
	span := rr.Hi - rr.Lo
	if span == 0 {
		return 0.5
	}
	v := (s - rr.Lo) / span
	return math.Min(math.Max(v, 0.0), 1.0)
}

// Span returns Hi - Lo of the normalized range.
func (r LevelRange) Span() float64 {
	rr := r.Normalized()
	return rr.Hi - rr.Lo
}

// ToneMap renders the buffer through the level window into a display frame.
// Scalar buffers come out as gray, vector buffers map each color channel
// through the same window; alpha, when present, is carried clamped rather
// than windowed. The frame's row 0 is the display TOP, so the buffer's
// bottom-origin rows are written in reverse order.
func ToneMap(b *Buffer, r LevelRange) *image.NRGBA {
	if b == nil {
		return nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for row := 0; row < b.H; row++ {
		y := b.H - 1 - row
		for col := 0; col < b.W; col++ {
			s := b.At(row, col)
			i := out.PixOffset(col, y)
			switch b.Kind {
			case ScalarSample:
				g := uint8(clampFloatToUint8(r.Map(float64(s[0])) * 255.0))
				out.Pix[i+0] = g
				out.Pix[i+1] = g
				out.Pix[i+2] = g
				out.Pix[i+3] = 255
			case VectorSample4:
				out.Pix[i+0] = uint8(clampFloatToUint8(r.Map(float64(s[0])) * 255.0))
				out.Pix[i+1] = uint8(clampFloatToUint8(r.Map(float64(s[1])) * 255.0))
				out.Pix[i+2] = uint8(clampFloatToUint8(r.Map(float64(s[2])) * 255.0))
				out.Pix[i+3] = uint8(clampFloatToUint8(float64(s[3])))
			default:
				out.Pix[i+0] = uint8(clampFloatToUint8(r.Map(float64(s[0])) * 255.0))
				out.Pix[i+1] = uint8(clampFloatToUint8(r.Map(float64(s[1])) * 255.0))
				out.Pix[i+2] = uint8(clampFloatToUint8(r.Map(float64(s[2])) * 255.0))
				out.Pix[i+3] = 255
			}
		}
	}
	return out
}

// clampFloatToUint8 clamps v to [0,255] and returns it as a float64 suitable
// for a uint8 conversion.
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
