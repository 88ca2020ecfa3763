package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// newBuffer builds a w x h buffer whose pixels are produced by fill.
func newBuffer(t testing.TB, w, h, c int, fill func(x, y int) []byte) *raster.Buffer {
	t.Helper()
	b, err := raster.New(w, h, c)
	require.NoError(t, err)
	if fill == nil {
		return b
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copy(b.Pixel(x, y), fill(x, y))
		}
	}
	return b
}

func solid(px ...byte) func(x, y int) []byte {
	return func(int, int) []byte { return px }
}

// gradient gives every pixel distinct channel values.
func gradient(c int) func(x, y int) []byte {
	return func(x, y int) []byte {
		px := make([]byte, c)
		for ch := range px {
			px[ch] = byte(x*31 + y*17 + ch*7)
		}
		return px
	}
}
