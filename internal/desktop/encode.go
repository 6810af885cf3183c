package desktop

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// PNGEncoder encodes captured frames. MaxDimension > 0 scales the longest
// side down to that many pixels before encoding.
type PNGEncoder struct {
	MaxDimension int
	Compression  png.CompressionLevel
}

// Encode returns the PNG bytes and the encoded dimensions.
func (e PNGEncoder) Encode(img image.Image) ([]byte, int, int, error) {
	img = downscale(img, e.MaxDimension)
	b := img.Bounds()
	if b.Empty() {
		return nil, 0, 0, fmt.Errorf("cannot encode empty image %v", b)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: e.Compression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, 0, 0, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}

	scale := float64(limit) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
