package raster

import (
	"image"
)

// SampleKind tags how the samples at each index should be interpreted.
// It is resolved once when a Buffer is constructed, so per-pixel readers
// never have to re-inspect channel counts.
type SampleKind int

const (
	ScalarSample  SampleKind = iota // one value per pixel
	VectorSample3                   // r,g,b
	VectorSample4                   // r,g,b,a
)

// Channels returns the number of samples per pixel for the kind.
func (k SampleKind) Channels() int {
	switch k {
	case VectorSample3:
		return 3
	case VectorSample4:
		return 4
	default:
		return 1
	}
}

// Buffer is a decoded raster held as float32 samples in the source's native
// scale (0..255 for 8-bit files, 0..65535 for 16-bit grayscale). A Buffer is
// immutable once constructed: reloads build a new Buffer and publish it,
// they never write into an existing one.
//
// Row 0 is the BOTTOM display row. Decoders produce rows top-first; the flip
// happens exactly once, inside NewFromImage, so index math everywhere else
// is a plain row/col lookup with no per-query inversion.
type Buffer struct {
	H, W     int
	Channels int
	Kind     SampleKind
	Pix      []float32 // len H*W*Channels, row-major from the display bottom

	// Global sample extremes, computed at construction. These seed the
	// default level range and the histogram domain.
	MinVal, MaxVal float64
}

// NewFromImage converts a decoded image into a Buffer, resolving the sample
// kind from the pixel data: grayscale images become scalar, color images
// become 3-channel unless any pixel carries partial alpha, which promotes
// the whole buffer to 4 channels.
func NewFromImage(img image.Image) *Buffer {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		buf := newBuffer(h, w, ScalarSample)
		for y := 0; y < h; y++ {
			row := buf.rowStart(h - 1 - y)
			for x := 0; x < w; x++ {
				buf.Pix[row+x] = float32(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		buf.finish()
		return buf
	case *image.Gray16:
		buf := newBuffer(h, w, ScalarSample)
		for y := 0; y < h; y++ {
			row := buf.rowStart(h - 1 - y)
			for x := 0; x < w; x++ {
				buf.Pix[row+x] = float32(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		buf.finish()
		return buf
	case *image.NRGBA:
		// Straight-alpha source: read Pix directly. Going through
		// At().RGBA() would premultiply and distort the raw values.
		hasAlpha := false
		for y := 0; y < h && !hasAlpha; y++ {
			o := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				if src.Pix[o+x*4+3] != 255 {
					hasAlpha = true
					break
				}
			}
		}
		kind := VectorSample3
		if hasAlpha {
			kind = VectorSample4
		}
		buf := newBuffer(h, w, kind)
		nc := buf.Channels
		for y := 0; y < h; y++ {
			row := buf.rowStart(h - 1 - y)
			o := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				i := row + x*nc
				buf.Pix[i+0] = float32(src.Pix[o+x*4+0])
				buf.Pix[i+1] = float32(src.Pix[o+x*4+1])
				buf.Pix[i+2] = float32(src.Pix[o+x*4+2])
				if hasAlpha {
					buf.Pix[i+3] = float32(src.Pix[o+x*4+3])
				}
			}
		}
		buf.finish()
		return buf
	}

	// Generic path: one pass to find out whether alpha matters, one pass to fill.
	hasAlpha := false
	for y := b.Min.Y; y < b.Max.Y && !hasAlpha; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				hasAlpha = true
				break
			}
		}
	}
	kind := VectorSample3
	if hasAlpha {
		kind = VectorSample4
	}
	buf := newBuffer(h, w, kind)
	nc := buf.Channels
	for y := 0; y < h; y++ {
		row := buf.rowStart(h - 1 - y)
		for x := 0; x < w; x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := row + x*nc
			buf.Pix[i+0] = float32(r >> 8)
			buf.Pix[i+1] = float32(g >> 8)
			buf.Pix[i+2] = float32(bb >> 8)
			if hasAlpha {
				buf.Pix[i+3] = float32(a >> 8)
			}
		}
	}
	buf.finish()
	return buf
}

func newBuffer(h, w int, kind SampleKind) *Buffer {
	nc := kind.Channels()
	return &Buffer{
		H:        h,
		W:        w,
		Channels: nc,
		Kind:     kind,
		Pix:      make([]float32, h*w*nc),
	}
}

// rowStart returns the Pix offset of the first sample in the given row.
func (b *Buffer) rowStart(row int) int {
	return row * b.W * b.Channels
}

// finish computes the sample extremes after Pix has been filled.
func (b *Buffer) finish() {
	if len(b.Pix) == 0 {
		b.MinVal, b.MaxVal = 0, 0
		return
	}
	mn, mx := b.Pix[0], b.Pix[0]
	for _, v := range b.Pix {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	b.MinVal = float64(mn)
	b.MaxVal = float64(mx)
}

// At returns the samples at (row, col) as a slice of length Channels.
// The slice aliases the buffer; callers must not write through it.
func (b *Buffer) At(row, col int) []float32 {
	i := b.rowStart(row) + col*b.Channels
	return b.Pix[i : i+b.Channels]
}

// Sample returns one channel's value at (row, col).
func (b *Buffer) Sample(row, col, ch int) float32 {
	return b.Pix[b.rowStart(row)+col*b.Channels+ch]
}

// AtClamped is At with both indices clamped into bounds, so callers probing
// from cursor or edge positions never have to range-check first.
func (b *Buffer) AtClamped(row, col int) []float32 {
	row = clampInt(row, 0, b.H-1)
	col = clampInt(col, 0, b.W-1)
	return b.At(row, col)
}

// Equal reports whether two buffers hold identical geometry and sample data.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.H != o.H || b.W != o.W || b.Channels != o.Channels || b.Kind != o.Kind {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
