package term

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"
)

func pinTerminalEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"TERM", "TERM_PROGRAM", "ITERM_SESSION_ID", "KITTY_WINDOW_ID",
		"TIV_PREVIEW", "TIV_SIXEL", "WT_SESSION",
	} {
		t.Setenv(v, "")
	}
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	return img
}

// noiseImage defeats PNG compression so the kitty path has to chunk.
func noiseImage(w, h int) *image.RGBA {
	rnd := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(rnd.Intn(256))
	}
	return img
}

func TestShowInlineSequence(t *testing.T) {
	pinTerminalEnv(t)
	t.Setenv("TERM_PROGRAM", "WezTerm")
	t.Setenv("TERM", "xterm-256color")

	var out bytes.Buffer
	if err := show(&out, testImage(2, 2), "png"); err != nil {
		t.Fatalf("show: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "\x1b]1337;File=name=preview.png") {
		t.Fatalf("missing OSC 1337 header: %q", s)
	}
	if !strings.Contains(s, ";inline=1;") {
		t.Fatalf("missing inline flag: %q", s)
	}
	if !strings.HasSuffix(strings.TrimRight(s, "\n"), "\a") {
		t.Fatalf("sequence not BEL-terminated: %q", s)
	}
}

func TestShowEncodesJPEG(t *testing.T) {
	pinTerminalEnv(t)
	t.Setenv("TERM_PROGRAM", "WezTerm")
	t.Setenv("TERM", "xterm-256color")

	var out bytes.Buffer
	if err := show(&out, testImage(4, 4), "jpeg"); err != nil {
		t.Fatalf("show: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "name=preview.jpg") {
		t.Fatalf("jpeg preview not named .jpg: %q", s)
	}

	idx := strings.Index(s, ":")
	if idx < 0 {
		t.Fatalf("no payload separator in %q", s)
	}
	payload := s[idx+1:]
	if bi := strings.Index(payload, "\a"); bi >= 0 {
		payload = payload[:bi]
	}
	dec, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	if len(dec) < 2 || dec[0] != 0xFF || dec[1] != 0xD8 {
		t.Fatalf("payload does not start with JPEG SOI: %x", dec[:4])
	}
}

func TestKittyChunking(t *testing.T) {
	pinTerminalEnv(t)
	t.Setenv("TIV_PREVIEW", "kitty")

	var out bytes.Buffer
	if err := show(&out, noiseImage(128, 128), "jpeg"); err != nil {
		t.Fatalf("show: %v", err)
	}
	s := out.String()

	if !strings.HasPrefix(s, "\x1b_Ga=T,f=100,t=d,q=2,c=") {
		t.Fatalf("first chunk header wrong: %q", s[:40])
	}
	if n := strings.Count(s, "\x1b_G"); n < 2 {
		t.Fatalf("payload not chunked: %d envelopes", n)
	}
	if n := strings.Count(s, "m=0;"); n != 1 {
		t.Fatalf("final-chunk markers = %d, want 1", n)
	}

	// Reassemble the payload and check that kitty got PNG even though the
	// caller asked for JPEG.
	var enc strings.Builder
	for _, part := range strings.Split(s, "\x1b\\") {
		if i := strings.Index(part, ";"); i >= 0 {
			enc.WriteString(part[i+1:])
		}
	}
	dec, err := base64.StdEncoding.DecodeString(enc.String())
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	if len(dec) < 4 || dec[0] != 0x89 || string(dec[1:4]) != "PNG" {
		t.Fatalf("kitty payload is not PNG: %x", dec[:4])
	}
}

func TestFitCells(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{160, 160, 20, 10},
		{10000, 100, 80, 1},
		{4, 4, 1, 1},
		{640, 640, 80, 40},
	}
	for _, c := range cases {
		got := fitCells(image.NewRGBA(image.Rect(0, 0, c.w, c.h)))
		if got.Cols != c.cols || got.Rows != c.rows {
			t.Errorf("fitCells(%dx%d) = %dx%d cells, want %dx%d",
				c.w, c.h, got.Cols, got.Rows, c.cols, c.rows)
		}
		if got.PxW != got.Cols*8 || got.PxH != got.Rows*16 {
			t.Errorf("fitCells(%dx%d) pixel hints %dx%d disagree with cells",
				c.w, c.h, got.PxW, got.PxH)
		}
	}
}

func TestShowNilImage(t *testing.T) {
	pinTerminalEnv(t)
	var out bytes.Buffer
	if err := show(&out, nil, "png"); err == nil {
		t.Fatalf("nil image did not error")
	}
}

func TestSupportedDetection(t *testing.T) {
	pinTerminalEnv(t)
	t.Setenv("TERM", "xterm-kitty")
	if !isKitty() {
		t.Fatalf("kitty TERM not detected")
	}
	t.Setenv("TERM", "foot")
	if !isSixelCapable() {
		t.Fatalf("foot TERM not sixel-capable")
	}
	t.Setenv("TERM", "dumb")
	t.Setenv("TIV_SIXEL", "1")
	if !Supported() {
		t.Fatalf("TIV_SIXEL override ignored")
	}
}
