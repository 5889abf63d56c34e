package viewer

import (
	"fmt"
	"math"

	"github.com/Fepozopo/tiv/pkg/raster"
)

// probe is the pointer's position over the image: continuous display
// coordinates with the origin at the bottom-left, plus the integer pixel
// they resolve to. Rows were flipped once at load, so no inversion happens
// here beyond translating cell y (top-first) into display y (bottom-first).
type probe struct {
	X, Y     float64
	Row, Col int
}

// probeAt maps a canvas cell to the image pixel under it. ok is false when
// the cell lies outside the drawn image; callers clear the readout then.
func probeAt(p placement, buf *raster.Buffer, cellX, cellY int) (probe, bool) {
	if buf == nil || !p.valid() || buf.W < 1 || buf.H < 1 {
		return probe{}, false
	}
	fx := cellX - p.offsetX
	fy := cellY - p.offsetY
	if fx < 0 || fx >= p.cols || fy < 0 || fy >= p.rows {
		return probe{}, false
	}
	x := (float64(fx) + 0.5) * float64(buf.W) / float64(p.cols)
	y := float64(buf.H) - (float64(fy)+0.5)*float64(buf.H)/float64(p.rows)
	return probe{
		X:   x,
		Y:   y,
		Col: truncClamp(x, buf.W-1),
		Row: truncClamp(y, buf.H-1),
	}, true
}

// truncClamp clamps v into [0, max] then truncates. NaN resolves to 0 so a
// malformed position still lands on a real pixel.
func truncClamp(v float64, max int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > float64(max) {
		return max
	}
	return int(v)
}

// statusLine formats the hover readout. Scalar buffers report one value,
// vector buffers the first three channels.
func statusLine(buf *raster.Buffer, pr probe) string {
	if buf == nil {
		return ""
	}
	s := buf.AtClamped(pr.Row, pr.Col)
	if buf.Kind == raster.ScalarSample {
		return fmt.Sprintf("pos: (%0.1f, %0.1f)  pixel: (%d, %d)  value: %.3g",
			pr.X, pr.Y, pr.Row, pr.Col, s[0])
	}
	return fmt.Sprintf("pos: (%0.1f, %0.1f)  pixel: (%d, %d)  value: [%.3g %.3g %.3g]",
		pr.X, pr.Y, pr.Row, pr.Col, s[0], s[1], s[2])
}
