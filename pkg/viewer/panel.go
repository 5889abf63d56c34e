package viewer

import (
	"fmt"
	"math"
	"strings"

	"github.com/Fepozopo/tiv/pkg/raster"
)

// The sidebar plots the histogram sideways: one text row per value band,
// maximum at the top, bar length proportional to the bin count. The window
// endpoints and the isoline ride on the same axis so dragging them lines up
// with the bars.

// panelValueAt maps a row inside the panel body to a sample value. Row 0 is
// the top and carries the maximum.
func panelValueAt(row, rows int, min, max float64) float64 {
	if rows <= 1 {
		return max
	}
	frac := float64(row) / float64(rows-1)
	return max - frac*(max-min)
}

// panelRowFor is the inverse of panelValueAt, clamped into the body.
func panelRowFor(v float64, rows int, min, max float64) int {
	if rows <= 1 || max == min || math.IsNaN(v) {
		return 0
	}
	r := int(math.Round((max - v) / (max - min) * float64(rows-1)))
	if r < 0 {
		return 0
	}
	if r > rows-1 {
		return rows - 1
	}
	return r
}

func histPanel(hd raster.HistogramData, rng raster.LevelRange, iso float64, rows, barW int) string {
	if rows < 1 || barW < 1 {
		return ""
	}

	counts := make([]int, rows)
	for _, ch := range hd.Counts {
		for i, n := range ch {
			counts[panelRowFor(hd.BinValue(i), rows, hd.Min, hd.Max)] += n
		}
	}
	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	nrng := rng.Normalized()
	loRow := panelRowFor(nrng.Lo, rows, hd.Min, hd.Max)
	hiRow := panelRowFor(nrng.Hi, rows, hd.Min, hd.Max)
	isoRow := panelRowFor(iso, rows, hd.Min, hd.Max)

	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		n := 0
		if maxCount > 0 {
			n = counts[r] * barW / maxCount
		}
		if counts[r] > 0 && n == 0 {
			n = 1 // keep sparse bins visible
		}
		bar := barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barW-n)
		switch {
		case r == isoRow:
			lines[r] = bar + isoStyle.Render("◀ "+fmtValue(iso))
		case r == hiRow:
			lines[r] = bar + windowStyle.Render("┤ "+fmtValue(nrng.Hi))
		case r == loRow:
			lines[r] = bar + windowStyle.Render("┤ "+fmtValue(nrng.Lo))
		case r == 0:
			lines[r] = bar + mutedStyle.Render("  "+fmtValue(hd.Max))
		case r == rows-1:
			lines[r] = bar + mutedStyle.Render("  "+fmtValue(hd.Min))
		default:
			lines[r] = bar
		}
	}
	return strings.Join(lines, "\n")
}

func fmtValue(v float64) string {
	return fmt.Sprintf("%.3g", v)
}
