package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

func TestFitWidth(t *testing.T) {
	for _, c := range []int{1, 2, 3, 4} {
		buf, err := raster.New(40, 20, c)
		require.NoError(t, err)
		for i := range buf.Data {
			buf.Data[i] = 120
		}

		out, err := FitWidth(buf, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, out.Width, "channels=%d", c)
		assert.Equal(t, 5, out.Height, "channels=%d", c)
		assert.Equal(t, c, out.Channels, "channel count must survive resizing")
	}
}

func TestFitWidthNoop(t *testing.T) {
	buf, err := raster.New(8, 8, 3)
	require.NoError(t, err)

	out, err := FitWidth(buf, 0)
	require.NoError(t, err)
	assert.Same(t, buf, out)

	out, err = FitWidth(buf, 8)
	require.NoError(t, err)
	assert.Same(t, buf, out)
}
