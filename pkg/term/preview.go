// Package term previews rendered frames inline in image-capable terminals.
// The interactive viewer never uses it; it owns the screen and draws with
// cells. This is for the one-shot tools that print a frame and exit.
package term

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
)

// Detection is heuristic: terminals rarely announce graphics support, so
// TERM, TERM_PROGRAM, and a few well-known variables are the best signal
// available. TIV_PREVIEW forces a backend when the heuristics guess wrong:
// "kitty", "inline", "sixel", or "chafa".

var previewDebug = os.Getenv("TIV_PREVIEW_DEBUG") == "1"

func debugf(format string, args ...interface{}) {
	if previewDebug {
		fmt.Fprintf(os.Stderr, "tiv-preview: "+format+"\n", args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func isInlineCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(os.Getenv("TERM")), "wezterm")
}

func isSixelCapable() bool {
	if os.Getenv("TIV_SIXEL") == "1" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "foot") || strings.Contains(term, "mlterm") {
		return true
	}
	return os.Getenv("WT_SESSION") != ""
}

func hasChafa() bool {
	_, err := exec.LookPath("chafa")
	return err == nil
}

// Supported reports whether any preview path is likely to work here.
func Supported() bool {
	return isKitty() || isInlineCapable() || isSixelCapable() || hasChafa()
}

// cellSize is the placement a preview asks the terminal for.
type cellSize struct {
	Cols, Rows int
	PxW, PxH   int
}

// fitCells maps image pixels onto a character grid assuming 8x16 pixel
// cells. Never scales up, and clamps to an 80x40 cell area so a full render
// doesn't take over the scrollback.
func fitCells(img image.Image) cellSize {
	const charW, charH = 8, 16
	const maxCols, maxRows = 80, 40

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	scale := math.Min(1, math.Min(
		float64(maxCols*charW)/float64(w),
		float64(maxRows*charH)/float64(h),
	))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cellSize{Cols: cols, Rows: rows, PxW: cols * charW, PxH: rows * charH}
}

// Show encodes img and prints it inline on stdout. format is "png" or
// "jpeg"; anything else falls back to PNG. Kitty always receives PNG, the
// only payload its direct transfer mode takes here.
func Show(img image.Image, format string) error {
	return show(os.Stdout, img, format)
}

func show(w io.Writer, img image.Image, format string) error {
	if img == nil {
		return fmt.Errorf("preview: nil image")
	}
	f := strings.ToLower(format)
	if isKitty() || os.Getenv("TIV_PREVIEW") == "kitty" {
		f = "png"
	}

	var blob bytes.Buffer
	switch f {
	case "jpeg", "jpg":
		f = "jpeg"
		if err := jpeg.Encode(&blob, img, &jpeg.Options{Quality: 92}); err != nil {
			return fmt.Errorf("preview: encode: %w", err)
		}
	default:
		f = "png"
		if err := png.Encode(&blob, img); err != nil {
			return fmt.Errorf("preview: encode: %w", err)
		}
	}
	return preview(w, blob.Bytes(), f, fitCells(img))
}

func preview(w io.Writer, blob []byte, format string, size cellSize) error {
	if len(blob) == 0 {
		return fmt.Errorf("preview: empty payload")
	}

	if backend := strings.ToLower(os.Getenv("TIV_PREVIEW")); backend != "" {
		debugf("forced backend %q", backend)
		switch backend {
		case "kitty":
			return writeKitty(w, blob, size)
		case "inline", "iterm":
			return writeInline(w, blob, format, size)
		case "sixel":
			return writeSixel(w, blob, size)
		case "chafa":
			return writeChafa(w, blob, size)
		}
		debugf("unknown TIV_PREVIEW value %q, using detection", backend)
	}

	switch {
	case isInlineCapable():
		debugf("inline protocol")
		return writeInline(w, blob, format, size)
	case isKitty():
		debugf("kitty protocol")
		return writeKitty(w, blob, size)
	case isSixelCapable():
		debugf("sixel via img2sixel")
		if err := writeSixel(w, blob, size); err == nil {
			return nil
		}
		fallthrough
	default:
		if hasChafa() {
			debugf("chafa fallback")
			return writeChafa(w, blob, size)
		}
	}
	return fmt.Errorf("preview: no supported terminal protocol")
}

// writeKitty transmits the payload with the kitty graphics protocol:
// chunked base64 in ESC _G ... ESC \ envelopes, 4096 bytes per chunk. q=2
// suppresses terminal responses; c and r pin the placement so the prompt
// lands under the image instead of on top of it.
func writeKitty(w io.Writer, blob []byte, size cellSize) error {
	enc := base64.StdEncoding.EncodeToString(blob)
	const chunkSize = 4096

	for pos := 0; pos < len(enc); pos += chunkSize {
		end := pos + chunkSize
		if end > len(enc) {
			end = len(enc)
		}
		m := "1"
		if end == len(enc) {
			m = "0"
		}
		header := "\x1b_Gm=" + m + ";"
		if pos == 0 {
			header = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;", size.Cols, size.Rows, m)
		}
		if _, err := io.WriteString(w, header+enc[pos:end]+"\x1b\\"); err != nil {
			return err
		}
	}
	return trailer(w, size.Rows)
}

// writeInline emits the iTerm2-style OSC 1337 inline file sequence.
func writeInline(w io.Writer, blob []byte, format string, size cellSize) error {
	name := "preview.png"
	if format == "jpeg" {
		name = "preview.jpg"
	}
	meta := fmt.Sprintf("size=%d;width=%dpx;height=%dpx;", len(blob), size.PxW, size.PxH)
	enc := base64.StdEncoding.EncodeToString(blob)
	if _, err := io.WriteString(w, "\x1b]1337;File=name="+name+";inline=1;"+meta+":"+enc+"\a"); err != nil {
		return err
	}
	return trailer(w, size.Rows)
}

// writeSixel pipes the payload through img2sixel. Writing a sixel encoder
// here isn't worth it while the external tool is this common.
func writeSixel(w io.Writer, blob []byte, size cellSize) error {
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(blob)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("preview: img2sixel: %w", err)
	}
	return trailer(w, size.Rows)
}

func writeChafa(w io.Writer, blob []byte, size cellSize) error {
	if _, err := exec.LookPath("chafa"); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	cmd := exec.Command("chafa", "--fill=block", "--symbols=block",
		"-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(blob)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("preview: chafa: %w", err)
	}
	return trailer(w, size.Rows)
}

// trailer advances the cursor below the image so whatever prints next
// doesn't overlap it.
func trailer(w io.Writer, rows int) error {
	n := 1
	switch {
	case rows > 20:
		n = 3
	case rows > 6:
		n = 2
	}
	_, err := io.WriteString(w, strings.Repeat("\n", n))
	return err
}
