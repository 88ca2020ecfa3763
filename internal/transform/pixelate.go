package transform

import (
	"fmt"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// Pixelate crops the image down to a multiple of size in both directions and
// fills every size x size block with the truncated mean of its pixels. The
// trailing partial strips are dropped, not padded.
func Pixelate(src *raster.Buffer, size int) (*raster.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: pixel size must be a positive integer, got %d", raster.ErrInvalidParameter, size)
	}
	ew := (src.Width / size) * size
	eh := (src.Height / size) * size
	if ew == 0 || eh == 0 {
		return nil, fmt.Errorf("%w: pixel size %d exceeds image %dx%d",
			raster.ErrInvalidParameter, size, src.Width, src.Height)
	}

	out, err := raster.New(ew, eh, src.Channels)
	if err != nil {
		return nil, fmt.Errorf("pixelate: %w", err)
	}

	c := src.Channels
	count := size * size
	sums := make([]int, c)
	avg := make([]byte, c)
	for by := 0; by < eh; by += size {
		for bx := 0; bx < ew; bx += size {
			clear(sums)
			for dy := 0; dy < size; dy++ {
				row := src.Offset(bx, by+dy)
				for dx := 0; dx < size; dx++ {
					for ch := 0; ch < c; ch++ {
						sums[ch] += int(src.Data[row+dx*c+ch])
					}
				}
			}
			for ch := range avg {
				avg[ch] = byte(sums[ch] / count)
			}
			for dy := 0; dy < size; dy++ {
				row := ((by+dy)*ew + bx) * c
				for dx := 0; dx < size; dx++ {
					copy(out.Data[row+dx*c:row+dx*c+c], avg)
				}
			}
		}
	}
	return out, nil
}
