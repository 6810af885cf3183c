package platform

import (
	"fmt"
	"image"
)

// BGRAToRGBA copies a 32bpp BGRX/BGRA buffer into a new RGBA image. The
// alpha byte of the source is ignored; desktop surfaces are opaque.
// stride is the number of bytes per source row.
func BGRAToRGBA(src []byte, width, height, stride int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid pixel buffer size %dx%d", width, height)
	}
	if stride < width*4 {
		return nil, fmt.Errorf("stride %d too small for width %d", stride, width)
	}
	if len(src) < stride*(height-1)+width*4 {
		return nil, fmt.Errorf("pixel buffer has %d bytes, need %d", len(src), stride*(height-1)+width*4)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		s := src[y*stride : y*stride+width*4]
		d := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < len(s); x += 4 {
			d[x+0] = s[x+2]
			d[x+1] = s[x+1]
			d[x+2] = s[x+0]
			d[x+3] = 0xff
		}
	}
	return img, nil
}
