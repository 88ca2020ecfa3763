package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

func TestGaussianKernel(t *testing.T) {
	for _, r := range []int{1, 2, 5, 12} {
		k := GaussianKernel(r)
		require.Len(t, k, 2*r+1)

		var sum float64
		for i, v := range k {
			sum += v
			assert.InDelta(t, v, k[len(k)-1-i], 1e-15, "kernel must be symmetric")
			if i > 0 && i <= r {
				assert.Greater(t, v, k[i-1], "kernel must rise toward the center")
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestGaussianKernelRadiusTwo(t *testing.T) {
	// sigma = 1: weights proportional to exp(-x*x/2).
	k := GaussianKernel(2)
	norm := 1 + 2*math.Exp(-0.5) + 2*math.Exp(-2)
	assert.InDelta(t, 1/norm, k[2], 1e-12)
	assert.InDelta(t, math.Exp(-0.5)/norm, k[1], 1e-12)
	assert.InDelta(t, math.Exp(-2)/norm, k[0], 1e-12)
}

func TestBlurConstantInterior(t *testing.T) {
	const r = 2
	src := newBuffer(t, 9, 9, 3, solid(100, 150, 200))
	out, err := Blur(src, r)
	require.NoError(t, err)

	for y := r; y < src.Height-r; y++ {
		for x := r; x < src.Width-r; x++ {
			assert.Equal(t, []byte{100, 150, 200}, []byte(out.Pixel(x, y)), "(%d,%d)", x, y)
		}
	}
}

func TestBlurDarkensBorders(t *testing.T) {
	src := newBuffer(t, 6, 6, 4, solid(200, 200, 200, 255))
	out, err := Blur(src, 2)
	require.NoError(t, err)

	corner := out.Pixel(0, 0)
	edge := out.Pixel(3, 0)
	for ch := 0; ch < 4; ch++ {
		assert.Less(t, corner[ch], src.Pixel(0, 0)[ch], "missing taps carry no weight")
		assert.Less(t, corner[ch], edge[ch], "corners lose taps in both passes")
	}
}

func TestBlurSmoothsImpulse(t *testing.T) {
	src := newBuffer(t, 7, 7, 3, func(x, y int) []byte {
		if x == 3 && y == 3 {
			return []byte{255, 255, 255}
		}
		return []byte{0, 0, 0}
	})
	out, err := Blur(src, 1)
	require.NoError(t, err)

	center := out.Pixel(3, 3)[0]
	near := out.Pixel(4, 3)[0]
	far := out.Pixel(6, 3)[0]
	assert.Less(t, center, byte(255))
	assert.Greater(t, near, byte(0))
	assert.Less(t, near, center)
	assert.Equal(t, byte(0), far)
}

func TestBlurValidation(t *testing.T) {
	rgb := newBuffer(t, 3, 3, 3, solid(1, 2, 3))
	gray := newBuffer(t, 3, 3, 1, solid(1))

	_, err := Blur(rgb, 0)
	assert.ErrorIs(t, err, raster.ErrInvalidParameter)
	_, err = Blur(rgb, -4)
	assert.ErrorIs(t, err, raster.ErrInvalidParameter)

	// Channel layout is checked before the radius.
	_, err = Blur(gray, 0)
	assert.ErrorIs(t, err, raster.ErrUnsupportedChannelLayout)

	_, err = Blur(nil, 3)
	assert.ErrorIs(t, err, raster.ErrInvalidBuffer)
}

func TestBlurLargeRadius(t *testing.T) {
	src := newBuffer(t, 4, 3, 3, gradient(3))
	out, err := Blur(src, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 3, out.Height)
}

func TestPixelateBlocks(t *testing.T) {
	src := newBuffer(t, 5, 3, 3, func(x, y int) []byte {
		v := byte(x + 10*y)
		return []byte{v, v, v}
	})
	out, err := Pixelate(src, 2)
	require.NoError(t, err)

	require.Equal(t, 4, out.Width, "width is cropped to a multiple of the block size")
	require.Equal(t, 2, out.Height)

	// (0+1+10+11)/4 and (2+3+12+13)/4, truncated.
	want := map[int]byte{0: 5, 1: 5, 2: 7, 3: 7}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			assert.Equal(t, want[x], out.Pixel(x, y)[0], "(%d,%d)", x, y)
		}
	}
}

func TestPixelateBlocksAreUniform(t *testing.T) {
	const size = 3
	src := newBuffer(t, 10, 7, 4, gradient(4))
	out, err := Pixelate(src, size)
	require.NoError(t, err)
	require.Equal(t, 9, out.Width)
	require.Equal(t, 6, out.Height)

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			anchor := out.Pixel(x-x%size, y-y%size)
			assert.Equal(t, []byte(anchor), []byte(out.Pixel(x, y)), "(%d,%d)", x, y)
		}
	}
}

func TestPixelateSizeOneIsIdentity(t *testing.T) {
	src := newBuffer(t, 4, 5, 2, gradient(2))
	out, err := Pixelate(src, 1)
	require.NoError(t, err)
	assert.True(t, src.Equal(out))
}

func TestPixelateWholeImage(t *testing.T) {
	src := newBuffer(t, 3, 3, 1, func(x, y int) []byte { return []byte{byte(x + 3*y)} })
	out, err := Pixelate(src, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Width)
	assert.Equal(t, []byte{4}, out.Data) // 36/9
}

func TestPixelateValidation(t *testing.T) {
	src := newBuffer(t, 3, 5, 3, gradient(3))

	_, err := Pixelate(src, 0)
	assert.ErrorIs(t, err, raster.ErrInvalidParameter)
	_, err = Pixelate(src, -2)
	assert.ErrorIs(t, err, raster.ErrInvalidParameter)
	_, err = Pixelate(src, 4)
	assert.ErrorIs(t, err, raster.ErrInvalidParameter, "block larger than the width")
	assert.Equal(t, raster.KindInvalidInput, raster.KindOf(err))
}
