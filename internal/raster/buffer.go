// Package raster defines the decoded pixel buffer shared by every transform:
// a flat, row-major, channel-interleaved byte slice plus its dimensions.
//
// The byte offset of channel c of pixel (x, y) is (y*Width + x)*Channels + c.
package raster

import (
	"fmt"
	"math"
)

// MaxBytes caps a single buffer allocation. Requests above it fail with
// ErrAllocation instead of letting make panic.
const MaxBytes = 1 << 30

// Buffer is a decoded raster image.
type Buffer struct {
	Width    int
	Height   int
	Channels int // 1=gray, 2=gray+alpha, 3=RGB, 4=RGBA
	Data     []byte
}

// New allocates a zeroed buffer for the given dimensions.
func New(width, height, channels int) (*Buffer, error) {
	n, err := size(width, height, channels)
	if err != nil {
		return nil, err
	}
	data, err := alloc(n)
	if err != nil {
		return nil, err
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Data: data}, nil
}

// Wrap builds a buffer around an existing slice. The slice is not copied.
func Wrap(width, height, channels int, data []byte) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Channels: channels, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks dimensions and that len(Data) == Width*Height*Channels.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	n, err := size(b.Width, b.Height, b.Channels)
	if err != nil {
		return err
	}
	if len(b.Data) != n {
		return fmt.Errorf("%w: data length %d, want %d for %dx%dx%d",
			ErrInvalidBuffer, len(b.Data), n, b.Width, b.Height, b.Channels)
	}
	return nil
}

// RequireColor reports ErrUnsupportedChannelLayout for buffers with fewer
// than three channels.
func (b *Buffer) RequireColor() error {
	if b.Channels < 3 {
		return fmt.Errorf("%w: %d channel(s), need at least 3 for RGB",
			ErrUnsupportedChannelLayout, b.Channels)
	}
	return nil
}

// Len returns the expected byte length.
func (b *Buffer) Len() int { return b.Width * b.Height * b.Channels }

// Offset returns the byte offset of the first channel of pixel (x, y).
func (b *Buffer) Offset(x, y int) int { return (y*b.Width + x) * b.Channels }

// Pixel returns the channel bytes of pixel (x, y) as a view into Data.
func (b *Buffer) Pixel(x, y int) []byte {
	i := b.Offset(x, y)
	return b.Data[i : i+b.Channels : i+b.Channels]
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Width: b.Width, Height: b.Height, Channels: b.Channels, Data: data}
}

// Equal reports whether both buffers have the same shape and bytes.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height || b.Channels != o.Channels {
		return false
	}
	if len(b.Data) != len(o.Data) {
		return false
	}
	for i := range b.Data {
		if b.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%dx%dx%d", b.Width, b.Height, b.Channels)
}

func size(width, height, channels int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if channels < 1 || channels > 4 {
		return 0, fmt.Errorf("%w: %d channels", ErrInvalidBuffer, channels)
	}
	if width > math.MaxInt/height || width*height > math.MaxInt/channels {
		return 0, fmt.Errorf("%w: %dx%dx%d overflows", ErrAllocation, width, height, channels)
	}
	return width * height * channels, nil
}

func alloc(n int) ([]byte, error) {
	if n > MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrAllocation, n, MaxBytes)
	}
	return make([]byte, n), nil
}
