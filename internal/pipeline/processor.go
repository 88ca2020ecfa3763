package pipeline

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AnyUserName/ggpicture/internal/codec"
	"github.com/AnyUserName/ggpicture/internal/hasher"
	"github.com/AnyUserName/ggpicture/internal/manifest"
	"github.com/AnyUserName/ggpicture/internal/raster"
	"github.com/AnyUserName/ggpicture/internal/telemetry"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source image: decode, transform, encode, emit.
func (p *Pipeline) processImage(ctx context.Context, src Source) (result processResult) {
	result.key = src.Key

	ctx, span := telemetry.Start(ctx, "process", attribute.String("ggpicture.key", src.Key))
	defer func() { telemetry.End(span, result.err) }()

	buf, format, err := codec.Decode(src.AbsPath)
	if err != nil {
		result.err = err
		return result
	}
	original := manifest.ImageInfo{
		Width:    buf.Width,
		Height:   buf.Height,
		Channels: buf.Channels,
		Format:   format,
		Size:     src.Size,
	}

	if p.op.NeedsColor {
		// Fail before paying for the resize.
		if err := buf.RequireColor(); err != nil {
			result.err = fmt.Errorf("%s %s: %w", p.op.Name, src.RelPath, err)
			return result
		}
	}

	buf, err = codec.FitWidth(buf, p.cfg.MaxWidth)
	if err != nil {
		result.err = err
		return result
	}

	out, err := p.apply(ctx, buf)
	if err != nil {
		result.err = fmt.Errorf("%s %s: %w", p.op.Name, src.RelPath, err)
		return result
	}

	outFormat := p.outputFormat(src.Format)
	enc := p.registry.Get(outFormat)
	data, err := p.registry.EncodeBytes(out, outFormat, p.cfg.Quality)
	if err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}

	contentHash := hasher.ContentHash(data, 16)

	// key.op.hash8.ext, next to the source's relative directory.
	fileName := fmt.Sprintf("%s.%s.%s.%s", path.Base(src.Key), p.op.Name, contentHash[:8], enc.Extension())
	relPath := path.Join(path.Dir(src.Key), fileName)

	if _, err := p.cfg.Emitter.Emit(ctx, relPath, data); err != nil {
		result.err = fmt.Errorf("emit %s: %w", relPath, err)
		return result
	}
	p.cfg.Metrics.ObserveOutput(len(data))

	result.asset = manifest.Asset{
		Original: original,
		Output: manifest.OutputInfo{
			ImageInfo: manifest.ImageInfo{
				Width:    out.Width,
				Height:   out.Height,
				Channels: out.Channels,
				Format:   enc.Format(),
				Size:     int64(len(data)),
			},
			Hash:      contentHash,
			PixelHash: hasher.BufferHash(out),
			Path:      relPath,
		},
	}
	return result
}

func (p *Pipeline) apply(ctx context.Context, buf *raster.Buffer) (out *raster.Buffer, err error) {
	_, span := telemetry.Start(ctx, "transform",
		attribute.String("ggpicture.op", p.op.Name),
		attribute.String("ggpicture.buffer", buf.String()),
	)
	defer func() { telemetry.End(span, err) }()

	start := time.Now()
	out, err = p.op.Apply(buf, p.cfg.Param)
	p.cfg.Metrics.ObserveTransform(p.op.Name, time.Since(start), buf.Width*buf.Height, err)
	return out, err
}

func (p *Pipeline) outputFormat(sourceFormat string) string {
	if p.cfg.Format != "" {
		return p.cfg.Format
	}
	if p.registry.Get(sourceFormat) != nil {
		return sourceFormat
	}
	return "png"
}
