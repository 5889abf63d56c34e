package raster

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Save writes img to path with the format inferred from the extension:
// .png, .jpg/.jpeg, .gif, .ppm. Anything else falls back to PNG.
func Save(path string, img image.Image) error {
	return SaveQuality(path, img, 92)
}

// SaveQuality is Save with an explicit JPEG quality (ignored by the other
// encoders).
func SaveQuality(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	case ".gif":
		return gif.Encode(f, img, nil)
	case ".ppm":
		return EncodePPM(f, img)
	case ".png":
		return png.Encode(f, img)
	default:
		return png.Encode(f, img)
	}
}
