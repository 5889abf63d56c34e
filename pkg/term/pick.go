package term

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// PickFile runs fzf over the raster files under startDir and returns the
// chosen path. The preview pane reuses the same capability detection as
// Show: icat for kitty, imgcat for iTerm2-likes, img2sixel, then chafa.
func PickFile(startDir string) (string, error) {
	if _, err := exec.LookPath("fzf"); err != nil {
		return "", fmt.Errorf("pick: %w", err)
	}

	var preview string
	switch {
	case isKitty():
		preview = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	case isInlineCapable():
		preview = "imgcat {} 2>/dev/null || chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	case isSixelCapable():
		preview = "img2sixel {} 2>/dev/null || chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	default:
		preview = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	}

	// fzf's --preview takes a single command line, so fallbacks have to be
	// expressed as || chains.
	script := fmt.Sprintf(
		"find %s -type f \\( -iname '*.ppm' -o -iname '*.pgm' -o -iname '*.pbm' -o -iname '*.png' -o -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.gif' \\) | fzf --height 100%% --border --prompt='image> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir), preview,
	)
	cmd := exec.Command("bash", "-lc", script)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	clearKittyImages()
	if err != nil {
		return "", fmt.Errorf("pick: fzf: %w", err)
	}
	sel := strings.TrimSpace(out.String())
	if sel == "" {
		return "", fmt.Errorf("pick: nothing selected")
	}
	return sel, nil
}

// clearKittyImages deletes any images the preview pane left on screen.
// Terminals that don't speak the kitty protocol ignore the sequence.
func clearKittyImages() {
	fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
}
