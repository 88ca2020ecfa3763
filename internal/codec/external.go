package codec

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// ToolEncoder encodes by writing a temporary PNG and running an external
// binary on it. Used for WebP (cwebp) and AVIF (avifenc).
type ToolEncoder struct {
	format string
	tool   string
	hint   string
	args   func(quality int, src, dst string) []string

	once sync.Once
	path string
}

// NewWebPEncoder shells out to cwebp.
// Install: brew install webp / apt install webp
func NewWebPEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "webp",
		tool:   "cwebp",
		hint:   "brew install webp",
		args: func(q int, src, dst string) []string {
			return []string{"-q", strconv.Itoa(q), "-m", "6", "-mt", "-quiet", src, "-o", dst}
		},
	}
}

// NewAVIFEncoder shells out to avifenc.
// Install: brew install libavif / apt install libavif-bin
func NewAVIFEncoder() *ToolEncoder {
	return &ToolEncoder{
		format: "avif",
		tool:   "avifenc",
		hint:   "brew install libavif",
		args: func(q int, src, dst string) []string {
			// avifenc quantizer: 0 (best) to 63 (worst).
			aq := strconv.Itoa(63 - q*63/100)
			return []string{"--min", aq, "--max", aq, "--speed", "6", "-j", "all", src, dst}
		},
	}
}

func (e *ToolEncoder) Format() string    { return e.format }
func (e *ToolEncoder) Extension() string { return e.format }

func (e *ToolEncoder) Available() bool {
	e.once.Do(func() {
		if p, err := exec.LookPath(e.tool); err == nil {
			e.path = p
		}
	})
	return e.path != ""
}

func (e *ToolEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	return e.EncodeContext(context.Background(), img, quality)
}

// EncodeContext is Encode with a context that kills the external process
// when cancelled.
func (e *ToolEncoder) EncodeContext(ctx context.Context, img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("%s not found in PATH; install with: %s", e.tool, e.hint)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	id := tempCounter.Add(1)
	srcPath, err := writeTempPNG(img, fmt.Sprintf("ggpicture_%s_src_%d_*.png", e.format, id))
	if err != nil {
		return nil, err
	}
	defer os.Remove(srcPath)

	dst, err := os.CreateTemp("", fmt.Sprintf("ggpicture_%s_dst_%d_*.%s", e.format, id, e.format))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dst.Name()
	dst.Close()
	defer os.Remove(dstPath)

	cmd := exec.CommandContext(ctx, e.path, e.args(quality, srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", e.tool, err, string(out))
	}
	return os.ReadFile(dstPath)
}

func writeTempPNG(img image.Image, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode temp png: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp png: %w", err)
	}
	return f.Name(), nil
}
