package raster

import (
	"encoding/binary"
	"image"
)

// jpegOrientation pulls the EXIF orientation tag (1..8) out of raw JPEG
// bytes. Returns 1 (upright) when the file carries no usable EXIF block;
// camera files are the only common source of non-trivial values.
func jpegOrientation(data []byte) int {
	tiff := tiffStartFromJPEG(data)
	if tiff < 0 {
		return 1
	}
	o := orientationFromTIFF(data, tiff)
	if o < 1 || o > 8 {
		return 1
	}
	return o
}

// tiffStartFromJPEG scans JPEG segments for an APP1 Exif block and returns
// the offset where the TIFF header begins, or -1.
func tiffStartFromJPEG(data []byte) int {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return -1
	}
	i := 2
	for i+4 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA { // start of scan, no EXIF past here
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && segLen >= 8 &&
			i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10
		}
		if segLen <= 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return -1
}

// orientationFromTIFF reads IFD0 entries looking for tag 0x0112 (SHORT).
func orientationFromTIFF(data []byte, tiff int) int {
	if tiff+8 > len(data) {
		return 0
	}
	var order binary.ByteOrder
	switch {
	case data[tiff] == 'I' && data[tiff+1] == 'I':
		order = binary.LittleEndian
	case data[tiff] == 'M' && data[tiff+1] == 'M':
		order = binary.BigEndian
	default:
		return 0
	}
	if order.Uint16(data[tiff+2:tiff+4]) != 0x002A {
		return 0
	}
	ifd := tiff + int(order.Uint32(data[tiff+4:tiff+8]))
	if ifd+2 > len(data) {
		return 0
	}
	n := int(order.Uint16(data[ifd : ifd+2]))
	for e := 0; e < n; e++ {
		ent := ifd + 2 + e*12
		if ent+12 > len(data) {
			return 0
		}
		if order.Uint16(data[ent:ent+2]) == 0x0112 && order.Uint16(data[ent+2:ent+4]) == 3 {
			return int(order.Uint16(data[ent+8 : ent+10]))
		}
	}
	return 0
}

// autoOrient rewrites the image so orientation 1 semantics hold. Orientations
// 5..8 swap the output dimensions.
func autoOrient(img image.Image, orientation int) image.Image {
	if img == nil || orientation <= 1 || orientation > 8 {
		return img
	}
	src := toNRGBA(img)
	b := src.Bounds()
	w := b.Dx()
	h := b.Dy()

	outW, outH := w, h
	if orientation >= 5 {
		outW, outH = h, w
	}
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // mirror horizontal
				dx, dy = w-1-x, y
			case 3: // rotate 180
				dx, dy = w-1-x, h-1-y
			case 4: // mirror vertical
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 CW
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // rotate 90 CCW
				dx, dy = y, w-1-x
			}
			si := src.PixOffset(x, y)
			di := out.PixOffset(dx, dy)
			copy(out.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return out
}

// toNRGBA converts any image.Image to a fresh *image.NRGBA.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		out := image.NewNRGBA(n.Rect)
		copy(out.Pix, n.Pix)
		return out
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := src.At(x, y).RGBA()
			out.Pix[idx+0] = uint8(r >> 8)
			out.Pix[idx+1] = uint8(g >> 8)
			out.Pix[idx+2] = uint8(bb >> 8)
			out.Pix[idx+3] = uint8(a >> 8)
			idx += 4
		}
	}
	return out
}
