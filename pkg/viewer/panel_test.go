package viewer

import (
	"math"
	"strings"
	"testing"

	"github.com/Fepozopo/tiv/pkg/raster"
)

func TestPanelValueAt(t *testing.T) {
	cases := []struct {
		row  int
		want float64
	}{
		{0, 100},
		{10, 0},
		{5, 50},
	}
	for _, c := range cases {
		if got := panelValueAt(c.row, 11, 0, 100); got != c.want {
			t.Errorf("panelValueAt(%d) = %v, want %v", c.row, got, c.want)
		}
	}
	if got := panelValueAt(3, 1, 0, 100); got != 100 {
		t.Errorf("single-row panel = %v, want max", got)
	}
}

func TestPanelRowFor(t *testing.T) {
	cases := []struct {
		v    float64
		want int
	}{
		{100, 0},
		{0, 10},
		{50, 5},
		{-20, 10},
		{999, 0},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := panelRowFor(c.v, 11, 0, 100); got != c.want {
			t.Errorf("panelRowFor(%v) = %d, want %d", c.v, got, c.want)
		}
	}
	if got := panelRowFor(5, 10, 7, 7); got != 0 {
		t.Errorf("collapsed domain = %d, want 0", got)
	}
}

func TestPanelRowRoundTrip(t *testing.T) {
	const rows = 17
	for r := 0; r < rows; r++ {
		v := panelValueAt(r, rows, -4, 12)
		if got := panelRowFor(v, rows, -4, 12); got != r {
			t.Errorf("row %d -> %v -> row %d", r, v, got)
		}
	}
}

func TestHistPanelMarkers(t *testing.T) {
	hd := raster.HistogramData{
		Bins:   2,
		Min:    0,
		Max:    100,
		Counts: [][]int{{5, 5}},
	}
	out := histPanel(hd, raster.LevelRange{Lo: 0, Hi: 100}, 50, 4, 4)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	if !strings.Contains(lines[0], "┤ 100") {
		t.Errorf("top line %q missing high marker", lines[0])
	}
	if n := strings.Count(lines[1], "█"); n != 4 {
		t.Errorf("bar cells on line 1 = %d, want 4", n)
	}
	if !strings.Contains(lines[2], "◀ 50") {
		t.Errorf("line 2 %q missing isoline marker", lines[2])
	}
	if !strings.Contains(lines[3], "┤ 0") {
		t.Errorf("bottom line %q missing low marker", lines[3])
	}
}

func TestHistPanelSparseBinStaysVisible(t *testing.T) {
	hd := raster.HistogramData{
		Bins:   2,
		Min:    0,
		Max:    100,
		Counts: [][]int{{1, 1000}},
	}
	lines := strings.Split(histPanel(hd, raster.LevelRange{Lo: 0, Hi: 100}, 50, 2, 10), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if n := strings.Count(lines[1], "█"); n != 1 {
		t.Errorf("sparse bin bar = %d cells, want 1", n)
	}
	if n := strings.Count(lines[0], "█"); n != 10 {
		t.Errorf("dense bin bar = %d cells, want 10", n)
	}
}

func TestHistPanelInvertedWindowMarkers(t *testing.T) {
	hd := raster.HistogramData{
		Bins:   1,
		Min:    0,
		Max:    100,
		Counts: [][]int{{3}},
	}
	out := histPanel(hd, raster.LevelRange{Lo: 90, Hi: 10}, 50, 11, 4)
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[1], "┤ 90") {
		t.Errorf("line 1 %q missing swapped high marker", lines[1])
	}
	if !strings.Contains(lines[9], "┤ 10") {
		t.Errorf("line 9 %q missing swapped low marker", lines[9])
	}
}

func TestHistPanelDegenerate(t *testing.T) {
	hd := raster.HistogramData{Bins: 1, Counts: [][]int{{1}}}
	if out := histPanel(hd, raster.LevelRange{}, 0, 0, 4); out != "" {
		t.Fatalf("zero rows = %q, want empty", out)
	}
	if out := histPanel(hd, raster.LevelRange{}, 0, 4, 0); out != "" {
		t.Fatalf("zero bar width = %q, want empty", out)
	}
}

func TestFmtValue(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0.8, "0.8"},
		{169, "169"},
		{12345, "1.23e+04"},
		{0, "0"},
	}
	for _, c := range cases {
		if got := fmtValue(c.v); got != c.want {
			t.Errorf("fmtValue(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}
