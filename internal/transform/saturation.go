package transform

import (
	"github.com/chewxy/math32"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// Saturation scales the HSL saturation of every pixel by 1+percent/100,
// clamped to [0, 1], and converts back to RGB by truncation. Achromatic
// pixels (R=G=B) carry no hue and stay achromatic for any percent.
func Saturation(src *raster.Buffer, percent int) (*raster.Buffer, error) {
	out, err := prepare(src, true)
	if err != nil {
		return nil, err
	}
	copy(out.Data, src.Data)
	factor := 1 + float32(percent)/100
	forEachPixel(out, func(px []byte) {
		h, s, l := rgbToHSL(px[0], px[1], px[2])
		s = clamp01(s * factor)
		px[0], px[1], px[2] = hslToRGB(h, s, l)
	})
	return out, nil
}

// rgbToHSL returns hue in [0, 1), saturation and lightness in [0, 1].
func rgbToHSL(rb, gb, bb byte) (h, s, l float32) {
	r := float32(rb) / 255
	g := float32(gb) / 255
	b := float32(bb) / 255

	hi := math32.Max(r, math32.Max(g, b))
	lo := math32.Min(r, math32.Min(g, b))
	l = (hi + lo) / 2

	delta := hi - lo
	if delta == 0 {
		return 0, 0, l
	}
	if l < 0.5 {
		s = delta / (hi + lo)
	} else {
		s = delta / (2 - hi - lo)
	}

	switch {
	case hi == r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case hi == g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	return h / 6, s, l
}

func hslToRGB(h, s, l float32) (byte, byte, byte) {
	c := (1 - math32.Abs(2*l-1)) * s
	x := c * (1 - math32.Abs(math32.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float32
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return raster.ClampFloat32((r + m) * 255),
		raster.ClampFloat32((g + m) * 255),
		raster.ClampFloat32((b + m) * 255)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
