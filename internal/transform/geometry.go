// Package transform implements the pixel transform engine. Every operation
// reads its source buffer and returns a newly allocated result; sources are
// never modified, so several transforms may run over the same buffer
// concurrently.
package transform

import (
	"fmt"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// RotateRight rotates 90° clockwise. The result is Height x Width.
func RotateRight(src *raster.Buffer) (*raster.Buffer, error) {
	return remap(src, src.Height, src.Width, func(x, y, w, h int) int {
		return x*h + (h - y - 1)
	})
}

// RotateLeft rotates 90° counter-clockwise. The result is Height x Width.
func RotateLeft(src *raster.Buffer) (*raster.Buffer, error) {
	return remap(src, src.Height, src.Width, func(x, y, w, h int) int {
		return (w-x-1)*h + y
	})
}

// Flip rotates 180°. Dimensions are unchanged.
func Flip(src *raster.Buffer) (*raster.Buffer, error) {
	return remap(src, src.Width, src.Height, func(x, y, w, h int) int {
		return (h-y-1)*w + (w - x - 1)
	})
}

// remap copies every source pixel (x, y) to the destination pixel index
// returned by dst. w and h passed to dst are the source dimensions.
func remap(src *raster.Buffer, outW, outH int, dst func(x, y, w, h int) int) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	out, err := raster.New(outW, outH, src.Channels)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	w, h, c := src.Width, src.Height, src.Channels
	for y := 0; y < h; y++ {
		row := src.Data[y*w*c : (y+1)*w*c]
		for x := 0; x < w; x++ {
			di := dst(x, y, w, h) * c
			copy(out.Data[di:di+c], row[x*c:x*c+c])
		}
	}
	return out, nil
}
