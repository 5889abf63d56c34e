package raster

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Plain and raw netpbm support: PGM (P2/P5) and PPM (P3/P6). Headers are
// "magic width height maxval" with #-comments allowed between tokens. ASCII
// variants carry whitespace-separated decimal samples; raw variants carry
// one byte per sample, or two big-endian bytes when maxval > 255.

func init() {
	image.RegisterFormat("pgm", "P2", decodePNM, decodePNMConfig)
	image.RegisterFormat("ppm", "P3", decodePNM, decodePNMConfig)
	image.RegisterFormat("pgm", "P5", decodePNM, decodePNMConfig)
	image.RegisterFormat("ppm", "P6", decodePNM, decodePNMConfig)
}

type pnmHeader struct {
	magic  string
	w, h   int
	maxval int
}

// pnmReader tokenizes a netpbm header and ASCII sample data, skipping
// whitespace and # comments.
type pnmReader struct {
	r *bufio.Reader
}

func (p *pnmReader) readToken() (string, error) {
	tok := make([]byte, 0, 8)
	inComment := false
	for {
		c, err := p.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		if inComment {
			if c == '\n' || c == '\r' {
				inComment = false
			}
			continue
		}
		switch {
		case c == '#':
			if len(tok) > 0 {
				return string(tok), nil
			}
			inComment = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, c)
		}
	}
}

func (p *pnmReader) readInt() (int, error) {
	tok, err := p.readToken()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range []byte(tok) {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("pnm: invalid integer %q", tok)
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, fmt.Errorf("pnm: integer %q out of range", tok)
		}
	}
	return n, nil
}

func (p *pnmReader) readHeader() (pnmHeader, error) {
	var hdr pnmHeader
	magic, err := p.readToken()
	if err != nil {
		return hdr, fmt.Errorf("pnm: missing magic: %w", err)
	}
	switch magic {
	case "P2", "P3", "P5", "P6":
		hdr.magic = magic
	default:
		return hdr, fmt.Errorf("pnm: unsupported magic %q", magic)
	}
	if hdr.w, err = p.readInt(); err != nil {
		return hdr, fmt.Errorf("pnm: bad width: %w", err)
	}
	if hdr.h, err = p.readInt(); err != nil {
		return hdr, fmt.Errorf("pnm: bad height: %w", err)
	}
	if hdr.maxval, err = p.readInt(); err != nil {
		return hdr, fmt.Errorf("pnm: bad maxval: %w", err)
	}
	if hdr.w <= 0 || hdr.h <= 0 {
		return hdr, fmt.Errorf("pnm: invalid dimensions %dx%d", hdr.w, hdr.h)
	}
	if hdr.maxval <= 0 || hdr.maxval > 65535 {
		return hdr, fmt.Errorf("pnm: invalid maxval %d", hdr.maxval)
	}
	return hdr, nil
}

func decodePNMConfig(r io.Reader) (image.Config, error) {
	p := &pnmReader{r: bufio.NewReader(r)}
	hdr, err := p.readHeader()
	if err != nil {
		return image.Config{}, err
	}
	var model color.Model
	switch {
	case hdr.magic == "P2" || hdr.magic == "P5":
		if hdr.maxval > 255 {
			model = color.Gray16Model
		} else {
			model = color.GrayModel
		}
	default:
		model = color.NRGBAModel
	}
	return image.Config{ColorModel: model, Width: hdr.w, Height: hdr.h}, nil
}

func decodePNM(r io.Reader) (image.Image, error) {
	p := &pnmReader{r: bufio.NewReader(r)}
	hdr, err := p.readHeader()
	if err != nil {
		return nil, err
	}
	gray := hdr.magic == "P2" || hdr.magic == "P5"
	ascii := hdr.magic == "P2" || hdr.magic == "P3"

	samplesPerPixel := 3
	if gray {
		samplesPerPixel = 1
	}
	n := hdr.w * hdr.h * samplesPerPixel
	samples := make([]int, n)

	if ascii {
		for i := 0; i < n; i++ {
			v, err := p.readInt()
			if err != nil {
				return nil, fmt.Errorf("pnm: truncated sample data: %w", err)
			}
			if v > hdr.maxval {
				return nil, fmt.Errorf("pnm: sample %d exceeds maxval %d", v, hdr.maxval)
			}
			samples[i] = v
		}
	} else {
		// Raw layouts: 1 or 2 bytes per sample, big-endian when wide.
		wide := hdr.maxval > 255
		bytesPer := 1
		if wide {
			bytesPer = 2
		}
		raw := make([]byte, n*bytesPer)
		if _, err := io.ReadFull(p.r, raw); err != nil {
			return nil, fmt.Errorf("pnm: truncated raster: %w", err)
		}
		for i := 0; i < n; i++ {
			if wide {
				samples[i] = int(raw[i*2])<<8 | int(raw[i*2+1])
			} else {
				samples[i] = int(raw[i])
			}
		}
	}

	// Scale into the standard image types' ranges.
	if gray {
		if hdr.maxval > 255 {
			out := image.NewGray16(image.Rect(0, 0, hdr.w, hdr.h))
			for i, v := range samples {
				g := uint16(v * 65535 / hdr.maxval)
				out.Pix[i*2] = uint8(g >> 8)
				out.Pix[i*2+1] = uint8(g)
			}
			return out, nil
		}
		out := image.NewGray(image.Rect(0, 0, hdr.w, hdr.h))
		for i, v := range samples {
			out.Pix[i] = uint8(v * 255 / hdr.maxval)
		}
		return out, nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, hdr.w, hdr.h))
	for i := 0; i < hdr.w*hdr.h; i++ {
		out.Pix[i*4+0] = uint8(samples[i*3+0] * 255 / hdr.maxval)
		out.Pix[i*4+1] = uint8(samples[i*3+1] * 255 / hdr.maxval)
		out.Pix[i*4+2] = uint8(samples[i*3+2] * 255 / hdr.maxval)
		out.Pix[i*4+3] = 255
	}
	return out, nil
}

// EncodePPM writes img as plain-text P3 with maxval 255, one "r g b" triple
// per line. Alpha is dropped.
func EncodePPM(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("pnm: nil image")
	}
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", r>>8, g>>8, bb>>8); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
