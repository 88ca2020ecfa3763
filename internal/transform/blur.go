package transform

import (
	"fmt"
	"math"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// truncBias keeps sums that are exact integers in real arithmetic from
// truncating one step low because the kernel weights do not add up to
// exactly 1 in floating point.
const truncBias = 1e-9

// GaussianKernel returns the normalized 1-D kernel of size 2*radius+1 with
// sigma = radius/2.
func GaussianKernel(radius int) []float64 {
	sigma := float64(radius) / 2
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// Blur applies a separable Gaussian blur: a horizontal pass into a scratch
// buffer, then a vertical pass into the result. Taps that fall outside the
// image are skipped and their weight is not redistributed, so borders get a
// reduced-support convolution. Requires at least three channels.
func Blur(src *raster.Buffer, radius int) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := src.RequireColor(); err != nil {
		return nil, err
	}
	if radius < 1 {
		return nil, fmt.Errorf("%w: blur radius must be a positive integer, got %d", raster.ErrInvalidParameter, radius)
	}

	tmp, err := raster.New(src.Width, src.Height, src.Channels)
	if err != nil {
		return nil, fmt.Errorf("blur scratch: %w", err)
	}
	out, err := raster.New(src.Width, src.Height, src.Channels)
	if err != nil {
		return nil, fmt.Errorf("blur output: %w", err)
	}

	kernel := GaussianKernel(radius)
	w, h, c := src.Width, src.Height, src.Channels

	// Horizontal pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				var v float64
				for k := -radius; k <= radius; k++ {
					xk := x + k
					if xk < 0 || xk >= w {
						continue
					}
					v += float64(src.Data[(y*w+xk)*c+ch]) * kernel[k+radius]
				}
				tmp.Data[(y*w+x)*c+ch] = raster.ClampFloat64(v + truncBias)
			}
		}
	}

	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				var v float64
				for k := -radius; k <= radius; k++ {
					yk := y + k
					if yk < 0 || yk >= h {
						continue
					}
					v += float64(tmp.Data[(yk*w+x)*c+ch]) * kernel[k+radius]
				}
				out.Data[(y*w+x)*c+ch] = raster.ClampFloat64(v + truncBias)
			}
		}
	}
	return out, nil
}
