package viewer

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/Fepozopo/tiv/pkg/raster"
)

// placement is where the image lands inside the canvas cell area. A text
// cell is one pixel wide and two pixels tall, so the fit is computed on a
// cols x rows*2 subpixel grid.
type placement struct {
	cols, rows       int // image extent in cells
	offsetX, offsetY int // top-left cell of the image inside the canvas
}

func (p placement) valid() bool {
	return p.cols > 0 && p.rows > 0
}

// computePlacement aspect-fits an imgW x imgH raster into cellW x cellH
// cells and centers it. Degenerate inputs produce an invalid placement
// instead of dividing by zero.
func computePlacement(imgW, imgH, cellW, cellH int) placement {
	if imgW < 1 || imgH < 1 || cellW < 1 || cellH < 1 {
		return placement{}
	}
	sx := float64(cellW) / float64(imgW)
	sy := float64(cellH*2) / float64(imgH)
	scale := sx
	if sy < scale {
		scale = sy
	}
	cols := int(float64(imgW) * scale)
	subRows := int(float64(imgH) * scale)
	if cols < 1 {
		cols = 1
	}
	if subRows < 1 {
		subRows = 1
	}
	rows := (subRows + 1) / 2
	if cols > cellW {
		cols = cellW
	}
	if rows > cellH {
		rows = cellH
	}
	return placement{
		cols:    cols,
		rows:    rows,
		offsetX: (cellW - cols) / 2,
		offsetY: (cellH - rows) / 2,
	}
}

// halfBlock paints two vertically stacked pixels into one cell: the top one
// as the foreground of U+2580, the bottom one as the background.
const halfBlock = "▀"

// renderCanvas tone-maps the buffer and draws it as half-block cells inside
// a cellW x cellH area, centered, with blank padding around it. Nearest
// neighbour scaling keeps individual pixels inspectable instead of smearing
// them together.
func renderCanvas(buf *raster.Buffer, rng raster.LevelRange, p placement, cellW, cellH int) string {
	if cellW < 1 || cellH < 1 {
		return ""
	}
	if buf == nil || !p.valid() {
		blank := strings.Repeat(" ", cellW)
		lines := make([]string, cellH)
		for i := range lines {
			lines[i] = blank
		}
		return strings.Join(lines, "\n")
	}

	frame := raster.ToneMap(buf, rng)
	scaled := imaging.Resize(frame, p.cols, p.rows*2, imaging.NearestNeighbor)

	var b strings.Builder
	pad := strings.Repeat(" ", p.offsetX)
	for cy := 0; cy < cellH; cy++ {
		if cy > 0 {
			b.WriteByte('\n')
		}
		iy := cy - p.offsetY
		if iy < 0 || iy >= p.rows {
			b.WriteString(strings.Repeat(" ", cellW))
			continue
		}
		b.WriteString(pad)
		for cx := 0; cx < p.cols; cx++ {
			top := cellHex(scaled, cx, iy*2)
			bot := cellHex(scaled, cx, iy*2+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bot)).
				Render(halfBlock))
		}
		b.WriteString(strings.Repeat(" ", cellW-p.offsetX-p.cols))
	}
	return b.String()
}

func cellHex(img *image.NRGBA, x, y int) string {
	b := img.Bounds()
	if x >= b.Dx() {
		x = b.Dx() - 1
	}
	if y >= b.Dy() {
		y = b.Dy() - 1
	}
	c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}
