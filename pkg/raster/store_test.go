package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const rampPPM = "P3\n2 2\n255\n10 10 10\n20 20 20\n30 30 30\n40 40 40\n"

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newRampState(t *testing.T) *State {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.ppm")
	writeFile(t, path, rampPPM)
	st, err := NewState(path)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return st
}

func TestNewStateInitialLoad(t *testing.T) {
	st := newRampState(t)
	b := st.Buffer()
	if b == nil || b.H != 2 || b.W != 2 {
		t.Fatalf("unexpected initial buffer %+v", b)
	}
	if r := st.LevelRange(); r.Lo != 10 || r.Hi != 40 {
		t.Fatalf("initial range [%v, %v], want the data extremes [10, 40]", r.Lo, r.Hi)
	}
	if st.Isoline() != 0.8 {
		t.Fatalf("initial isoline = %v, want 0.8", st.Isoline())
	}
	if st.Pinned() {
		t.Fatalf("state should start unpinned")
	}
}

func TestNewStateMissingFile(t *testing.T) {
	_, err := NewState(filepath.Join(t.TempDir(), "absent.ppm"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("missing file should wrap ErrDecode, got %v", err)
	}
}

func TestReloadSameContent(t *testing.T) {
	st := newRampState(t)
	before := st.Buffer()
	if err := st.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !st.Buffer().Equal(before) {
		t.Fatalf("reload of unchanged file should produce an equal buffer")
	}
}

func TestReloadPicksUpNewContent(t *testing.T) {
	st := newRampState(t)
	writeFile(t, st.Path, "P3\n1 1\n255\n0 0 0\n")
	if err := st.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	b := st.Buffer()
	if b.H != 1 || b.W != 1 {
		t.Fatalf("reload kept the old geometry %dx%d", b.W, b.H)
	}
	// Unpinned, so the window follows the new data.
	if r := st.LevelRange(); r.Lo != 0 || r.Hi != 0 {
		t.Fatalf("range after reload [%v, %v], want [0, 0]", r.Lo, r.Hi)
	}
}

func TestReloadFailureKeepsState(t *testing.T) {
	st := newRampState(t)
	before := st.Buffer()
	beforeRange := st.LevelRange()

	writeFile(t, st.Path, "half a file, not an im")
	err := st.Reload()
	if err == nil {
		t.Fatalf("expected reload error for corrupt file")
	}
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("reload error should wrap ErrDecode, got %v", err)
	}
	if st.Buffer() != before {
		t.Fatalf("failed reload must keep the previous buffer current")
	}
	if st.LevelRange() != beforeRange {
		t.Fatalf("failed reload must not touch the level window")
	}
}

func TestPinnedWindowSurvivesReload(t *testing.T) {
	st := newRampState(t)
	st.SetLevelRange(12, 34)
	st.SetPinned(true)

	writeFile(t, st.Path, "P3\n1 1\n255\n200 200 200\n")
	if err := st.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if r := st.LevelRange(); r.Lo != 12 || r.Hi != 34 {
		t.Fatalf("pinned window changed to [%v, %v]", r.Lo, r.Hi)
	}

	st.SetPinned(false)
	if err := st.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if r := st.LevelRange(); r.Lo != 200 || r.Hi != 200 {
		t.Fatalf("unpinned reload should reset the window, got [%v, %v]", r.Lo, r.Hi)
	}
}

func TestSetLevelRangeSwaps(t *testing.T) {
	st := newRampState(t)
	st.SetLevelRange(40, 10)
	if r := st.LevelRange(); r.Lo != 10 || r.Hi != 40 {
		t.Fatalf("inverted endpoints should swap, got [%v, %v]", r.Lo, r.Hi)
	}
}

func TestSetLevelRangeRejectsNaN(t *testing.T) {
	st := newRampState(t)
	st.SetLevelRange(12, 34)
	st.SetLevelRange(math.NaN(), 50)
	if r := st.LevelRange(); r.Lo != 10 || r.Hi != 40 {
		t.Fatalf("NaN endpoint should fall back to the default window, got [%v, %v]", r.Lo, r.Hi)
	}
	st.SetLevelRange(0, math.Inf(1))
	if r := st.LevelRange(); r.Lo != 10 || r.Hi != 40 {
		t.Fatalf("infinite endpoint should fall back to the default window, got [%v, %v]", r.Lo, r.Hi)
	}
}

func TestResetRange(t *testing.T) {
	st := newRampState(t)
	st.SetLevelRange(0, 1000)
	st.ResetRange()
	if r := st.LevelRange(); r.Lo != 10 || r.Hi != 40 {
		t.Fatalf("reset range [%v, %v], want [10, 40]", r.Lo, r.Hi)
	}
}

func TestIsolineIndependentOfWindow(t *testing.T) {
	st := newRampState(t)
	st.SetIsoline(0.33)
	st.SetLevelRange(15, 25)
	st.ResetRange()
	if st.Isoline() != 0.33 {
		t.Fatalf("window edits moved the isoline to %v", st.Isoline())
	}
	st.SetIsoline(math.NaN())
	if st.Isoline() != 0.33 {
		t.Fatalf("NaN isoline should be ignored, got %v", st.Isoline())
	}
	// The marker is cosmetic and deliberately unconstrained.
	st.SetIsoline(-2.5)
	if st.Isoline() != -2.5 {
		t.Fatalf("out-of-window isoline should be accepted, got %v", st.Isoline())
	}
}

func TestConcurrentReadersSeeWholeBuffers(t *testing.T) {
	st := newRampState(t)

	// Each published buffer is uniform, so a torn read would show up as a
	// buffer with two different sample values.
	buffers := make([]*Buffer, 8)
	for i := range buffers {
		buffers[i] = NewFromImage(makeSolidNRGBA(16, 16, color.NRGBA{
			R: uint8(i * 10), G: uint8(i * 10), B: uint8(i * 10), A: 255,
		}))
	}

	st.ApplyReload(buffers[0]) // replace the non-uniform fixture before readers start

	done := make(chan struct{})
	var wg sync.WaitGroup
	var failed sync.Map
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				b := st.Buffer()
				first := b.Pix[0]
				for i, v := range b.Pix {
					if v != first {
						failed.Store(id, fmt.Sprintf("sample %d = %v, first = %v", i, v, first))
						return
					}
				}
			}
		}(r)
	}

	for i := 0; i < 2000; i++ {
		st.ApplyReload(buffers[i%len(buffers)])
	}
	close(done)
	wg.Wait()

	failed.Range(func(k, v interface{}) bool {
		t.Fatalf("reader %v observed a torn buffer: %v", k, v)
		return false
	})
}
