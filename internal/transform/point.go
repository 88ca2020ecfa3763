package transform

import (
	"math"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// Brightness scales every byte by percent: v + v*percent/100, integer
// arithmetic truncated toward zero, clamped to [0, 255]. Alpha bytes are
// scaled like color bytes.
func Brightness(src *raster.Buffer, percent int) (*raster.Buffer, error) {
	out, err := prepare(src, false)
	if err != nil {
		return nil, err
	}
	// Past these bounds every byte already clamps, and n*percent cannot overflow.
	percent = min(max(percent, minBrightness), maxBrightness)
	for i, v := range src.Data {
		n := int(v)
		out.Data[i] = raster.ClampInt(n + n*percent/100)
	}
	return out, nil
}

// Contrast stretches every byte around the midpoint 128 by 1+percent/100.
// Like Brightness it does not distinguish alpha from color.
func Contrast(src *raster.Buffer, percent int) (*raster.Buffer, error) {
	out, err := prepare(src, false)
	if err != nil {
		return nil, err
	}
	const midpoint = 128
	factor := 1 + float32(percent)/100
	for i, v := range src.Data {
		out.Data[i] = raster.ClampFloat32(midpoint + float32(int(v)-midpoint)*factor)
	}
	return out, nil
}

// Grayscale replaces R, G and B of each pixel with the rounded Rec.601
// luminance. Requires at least three channels; a fourth is copied as is.
func Grayscale(src *raster.Buffer) (*raster.Buffer, error) {
	out, err := prepare(src, true)
	if err != nil {
		return nil, err
	}
	copy(out.Data, src.Data)
	forEachPixel(out, func(px []byte) {
		lum := byte(math.Round(0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])))
		px[0], px[1], px[2] = lum, lum, lum
	})
	return out, nil
}

// Vintage applies the fixed sepia matrix to R, G and B. Results are
// truncated and capped at 255; inputs and weights are non-negative.
func Vintage(src *raster.Buffer) (*raster.Buffer, error) {
	out, err := prepare(src, true)
	if err != nil {
		return nil, err
	}
	copy(out.Data, src.Data)
	forEachPixel(out, func(px []byte) {
		r, g, b := float64(px[0]), float64(px[1]), float64(px[2])
		px[0] = capByte(int(0.393*r + 0.769*g + 0.189*b))
		px[1] = capByte(int(0.349*r + 0.686*g + 0.168*b))
		px[2] = capByte(int(0.272*r + 0.534*g + 0.131*b))
	})
	return out, nil
}

// prepare validates src and allocates a result of the same shape. When
// color is set, buffers with fewer than three channels are rejected before
// anything is allocated.
func prepare(src *raster.Buffer, color bool) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if color {
		if err := src.RequireColor(); err != nil {
			return nil, err
		}
	}
	return raster.New(src.Width, src.Height, src.Channels)
}

func forEachPixel(b *raster.Buffer, fn func(px []byte)) {
	c := b.Channels
	for i := 0; i+c <= len(b.Data); i += c {
		fn(b.Data[i : i+c : i+c])
	}
}

const (
	minBrightness = -100      // every byte becomes 0
	maxBrightness = 255 * 100 // every non-zero byte becomes 255
)

func capByte(v int) byte {
	if v > 255 {
		return 255
	}
	return byte(v)
}
