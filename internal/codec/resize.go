package codec

import (
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// FitWidth downscales buf to maxWidth with a Lanczos filter, keeping the
// aspect ratio and channel count. Buffers already within maxWidth, or a
// maxWidth <= 0, are returned unchanged.
func FitWidth(buf *raster.Buffer, maxWidth int) (*raster.Buffer, error) {
	if maxWidth <= 0 || buf.Width <= maxWidth {
		return buf, nil
	}
	img, err := ToImage(buf)
	if err != nil {
		return nil, err
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	out, err := fromImage(resized, buf.Channels)
	if err != nil {
		return nil, fmt.Errorf("resize to %dpx: %w", maxWidth, err)
	}
	return out, nil
}
