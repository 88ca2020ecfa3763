package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// DefaultFormat is written when the output path has no usable extension.
const DefaultFormat = "bmp"

// Registry holds all available encoders, keyed by format name.
type Registry struct {
	encoders map[string]Encoder
	order    []string
}

// formatAliases maps file extensions to format names.
var formatAliases = map[string]string{
	"jpg": "jpeg",
	"tif": "tiff",
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{encoders: make(map[string]Encoder)}

	all := []Encoder{
		NewImagingEncoder(imaging.BMP),
		NewImagingEncoder(imaging.PNG),
		NewImagingEncoder(imaging.JPEG),
		NewImagingEncoder(imaging.GIF),
		NewImagingEncoder(imaging.TIFF),
		NewWebPEncoder(),
		NewAVIFEncoder(),
	}
	for _, enc := range all {
		r.Register(enc)
	}
	return r
}

// Register adds enc if it is available, replacing any encoder for the same format.
func (r *Registry) Register(enc Encoder) {
	if !enc.Available() {
		return
	}
	f := enc.Format()
	if _, ok := r.encoders[f]; !ok {
		r.order = append(r.order, f)
	}
	r.encoders[f] = enc
}

// Get returns an encoder for the given format or extension, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if a, ok := formatAliases[format]; ok {
		format = a
	}
	return r.encoders[format]
}

// ForPath picks the encoder matching the extension of path. A path without
// an extension gets DefaultFormat.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = DefaultFormat
	}
	enc := r.Get(ext)
	if enc == nil {
		return nil, fmt.Errorf("%w: no encoder for %q (available: %s)",
			raster.ErrEncode, ext, strings.Join(r.Available(), ", "))
	}
	return enc, nil
}

// Available returns all available format names in registration order.
func (r *Registry) Available() []string {
	return append([]string(nil), r.order...)
}

// EncodeBytes encodes buf in the named format.
func (r *Registry) EncodeBytes(buf *raster.Buffer, format string, quality int) ([]byte, error) {
	enc := r.Get(format)
	if enc == nil {
		return nil, fmt.Errorf("%w: no encoder for %q", raster.ErrEncode, format)
	}
	return encodeWith(enc, buf, quality)
}

// Encode writes buf to path in the format implied by its extension,
// creating parent directories as needed.
func (r *Registry) Encode(buf *raster.Buffer, path string, quality int) error {
	enc, err := r.ForPath(path)
	if err != nil {
		return err
	}
	data, err := encodeWith(enc, buf, quality)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create output dir: %w", raster.ErrEncode, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", raster.ErrEncode, err)
	}
	return nil
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}

func encodeWith(enc Encoder, buf *raster.Buffer, quality int) ([]byte, error) {
	img, err := ToImage(buf)
	if err != nil {
		return nil, err
	}
	data, err := enc.Encode(img, quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", raster.ErrEncode, enc.Format(), err)
	}
	return data, nil
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry() }

// Encode writes buf to path using the default registry.
func Encode(buf *raster.Buffer, path string, quality int) error {
	return Default().Encode(buf, path, quality)
}

// EncodeBytes encodes buf in the named format using the default registry.
func EncodeBytes(buf *raster.Buffer, format string, quality int) ([]byte, error) {
	return Default().EncodeBytes(buf, format, quality)
}
