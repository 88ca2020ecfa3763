// Package codec moves images between files and raster buffers. Decoding
// goes through image.Decode with the stdlib and x/image formats registered;
// encoding picks an Encoder from the destination extension.
package codec

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// Decode reads the image at path into a buffer. The channel count follows
// the source: 1 for gray, 3 for opaque color, 4 when alpha is present.
// The returned string is the format name reported by image.Decode.
func Decode(path string) (*raster.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", raster.ErrDecode, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", raster.ErrDecode, path, err)
	}
	// Reject oversized images before the decoder allocates them.
	if int64(cfg.Width)*int64(cfg.Height)*4 > raster.MaxBytes {
		return nil, "", fmt.Errorf("%w: %s is %dx%d", raster.ErrAllocation, path, cfg.Width, cfg.Height)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, "", fmt.Errorf("%w: rewind %s: %w", raster.ErrDecode, path, err)
	}
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %w", raster.ErrDecode, path, err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, format, nil
}

// Channels reports how many channels FromImage produces for img.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.NRGBA, *image.NRGBA64:
		return 4
	}
	if img.ColorModel() == color.GrayModel || img.ColorModel() == color.Gray16Model {
		return 1
	}
	if HasAlpha(img) {
		return 4
	}
	return 3
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.RGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}

// FromImage copies img into a new buffer with Channels(img) channels.
// Color values are non-premultiplied.
func FromImage(img image.Image) (*raster.Buffer, error) {
	return fromImage(img, Channels(img))
}

func fromImage(img image.Image, c int) (*raster.Buffer, error) {
	b := img.Bounds()
	buf, err := raster.New(b.Dx(), b.Dy(), c)
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.Gray:
		if c == 1 {
			for y := 0; y < b.Dy(); y++ {
				i := src.PixOffset(b.Min.X, b.Min.Y+y)
				copy(buf.Data[y*b.Dx():], src.Pix[i:i+b.Dx()])
			}
			return buf, nil
		}
	case *image.NRGBA:
		if c == 4 {
			row := b.Dx() * 4
			for y := 0; y < b.Dy(); y++ {
				i := src.PixOffset(b.Min.X, b.Min.Y+y)
				copy(buf.Data[y*row:], src.Pix[i:i+row])
			}
			return buf, nil
		}
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			px := buf.Pixel(x, y)
			at := img.At(b.Min.X+x, b.Min.Y+y)
			switch c {
			case 1:
				px[0] = color.GrayModel.Convert(at).(color.Gray).Y
			case 2:
				// Gray+alpha buffers are written as R=G=B, so R carries the gray level.
				n := color.NRGBAModel.Convert(at).(color.NRGBA)
				px[0], px[1] = n.R, n.A
			default:
				n := color.NRGBAModel.Convert(at).(color.NRGBA)
				px[0], px[1], px[2] = n.R, n.G, n.B
				if c == 4 {
					px[3] = n.A
				}
			}
		}
	}
	return buf, nil
}

// ToImage wraps buf as an image: 1 channel becomes *image.Gray, everything
// else *image.NRGBA (opaque for 3 channels, gray+alpha for 2).
func ToImage(buf *raster.Buffer) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, buf.Width, buf.Height)
	if buf.Channels == 1 {
		img := image.NewGray(rect)
		copy(img.Pix, buf.Data)
		return img, nil
	}

	img := image.NewNRGBA(rect)
	if buf.Channels == 4 {
		copy(img.Pix, buf.Data)
		return img, nil
	}
	c := buf.Channels
	for i, j := 0, 0; i < len(buf.Data); i, j = i+c, j+4 {
		if c == 2 {
			g := buf.Data[i]
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = g, g, g, buf.Data[i+1]
			continue
		}
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = buf.Data[i], buf.Data[i+1], buf.Data[i+2], 255
	}
	return img, nil
}
