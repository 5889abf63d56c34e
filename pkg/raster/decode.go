package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode marks any failure to turn a file into pixels: missing path,
// unreadable file, unknown or corrupt format. Callers test with errors.Is
// to distinguish recoverable reload failures from programming errors.
var ErrDecode = errors.New("decode")

// DecodeFile reads and decodes the raster file at path. Formats: PGM/PPM
// (plain and raw), PNG, JPEG, GIF, BMP, TIFF, WebP. JPEGs with an EXIF
// orientation tag are rewritten upright before returning.
func DecodeFile(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	orientation := 1
	if len(b) >= 3 && bytes.Equal(b[:3], []byte{0xFF, 0xD8, 0xFF}) {
		orientation = jpegOrientation(b)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	if orientation != 1 {
		img = autoOrient(img, orientation)
	}
	return img, nil
}

// Load decodes path into a display-oriented Buffer (sample kind resolved,
// rows flipped to the bottom-left origin).
func Load(path string) (*Buffer, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	buf := NewFromImage(img)
	if buf == nil || buf.H == 0 || buf.W == 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrDecode, path)
	}
	return buf, nil
}
