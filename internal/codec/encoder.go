package codec

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultQuality is used when a lossy encoder gets a quality outside 1-100.
const DefaultQuality = 90

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "bmp", "jpeg", "webp").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Lossless formats ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}

// ImagingEncoder encodes through disintegration/imaging, which covers the
// formats Go can write natively.
type ImagingEncoder struct {
	format imaging.Format
}

// NewImagingEncoder returns an encoder for the given imaging format.
func NewImagingEncoder(f imaging.Format) *ImagingEncoder {
	return &ImagingEncoder{format: f}
}

func (e *ImagingEncoder) Format() string  { return strings.ToLower(e.format.String()) }
func (e *ImagingEncoder) Available() bool { return true }

func (e *ImagingEncoder) Extension() string {
	switch e.format {
	case imaging.JPEG:
		return "jpg"
	case imaging.TIFF:
		return "tiff"
	default:
		return e.Format()
	}
}

func (e *ImagingEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	b := img.Bounds()
	buf.Grow(b.Dx()*b.Dy()*3 + 1024)

	err := imaging.Encode(&buf, img, e.format,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
