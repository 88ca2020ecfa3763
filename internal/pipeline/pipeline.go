// Package pipeline applies one transform to every image in a directory
// with a bounded worker pool and reports the results as a manifest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AnyUserName/ggpicture/internal/codec"
	"github.com/AnyUserName/ggpicture/internal/manifest"
	"github.com/AnyUserName/ggpicture/internal/raster"
	"github.com/AnyUserName/ggpicture/internal/telemetry"
	"github.com/AnyUserName/ggpicture/internal/transform"
)

// ErrDuplicateKey marks a source whose key is already used by another file
// differing only in extension.
var ErrDuplicateKey = errors.New("duplicate asset key")

// Config holds all parameters for a batch run.
type Config struct {
	InputDir string
	Op       string
	Param    int
	Workers  int
	Quality  int
	// Format forces the output format. Empty keeps the source format when
	// it can be encoded and falls back to png otherwise.
	Format   string
	MaxWidth int // downscale wider sources before transforming; 0 disables

	Emitter Emitter
	Metrics *telemetry.Metrics // optional
	Logger  *log.Logger        // optional
}

// Pipeline orchestrates a batch run.
type Pipeline struct {
	cfg      Config
	op       transform.Op
	registry *codec.Registry
	logger   *log.Logger
}

// New validates cfg and creates a pipeline.
func New(cfg Config) (*Pipeline, error) {
	op, err := transform.Resolve(cfg.Op)
	if err != nil {
		return nil, err
	}
	if err := op.CheckParam(cfg.Param); err != nil {
		return nil, err
	}
	if cfg.Emitter == nil {
		return nil, fmt.Errorf("pipeline: no emitter configured")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	registry := codec.Default()
	if cfg.Format != "" && registry.Get(cfg.Format) == nil {
		return nil, fmt.Errorf("%w: no encoder for %q (available: %v)",
			raster.ErrEncode, cfg.Format, registry.Available())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{cfg: cfg, op: op, registry: registry, logger: logger}, nil
}

// Run processes every image under InputDir and returns the manifest. Files
// that fail are recorded in the manifest; the run itself fails only when
// every file failed or ctx was cancelled.
func (p *Pipeline) Run(ctx context.Context) (m *manifest.Manifest, err error) {
	ctx, span := telemetry.Start(ctx, "batch",
		attribute.String("ggpicture.op", p.op.Name),
		attribute.Int("ggpicture.param", p.cfg.Param),
		attribute.Int("ggpicture.workers", p.cfg.Workers),
	)
	defer func() { telemetry.End(span, err) }()

	p.logger.Printf("%s", p.registry)
	p.logger.Printf("output: %s", p.cfg.Emitter.Describe())

	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.logger.Printf("found %d images", len(sources))

	unique, dups := splitDuplicates(sources)
	results := make([]processResult, len(unique), len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range unique {
		select {
		case sem <- struct{}{}: // acquire
		case <-ctx.Done():
			results[i] = processResult{key: src.Key, err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			defer func() { <-sem }() // release

			p.logger.Printf("processing: %s", s.Key)
			results[idx] = p.processImage(ctx, s)
			if results[idx].err == nil {
				p.logger.Printf("done: %s -> %s", s.Key, results[idx].asset.Output.Path)
			}
		}(i, src)
	}
	wg.Wait()

	for _, d := range dups {
		results = append(results, processResult{
			key: d.RelPath,
			err: fmt.Errorf("%w: %s: %w %q", raster.ErrInvalidParameter, d.RelPath, ErrDuplicateKey, d.Key),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	m = manifest.New(p.op.Name, p.cfg.Param)
	for _, r := range results {
		if r.err != nil {
			p.logger.Printf("error: %s: %v", r.key, r.err)
			m.Failures = append(m.Failures, manifest.Failure{
				Key:   r.key,
				Kind:  raster.KindOf(r.err).String(),
				Error: r.err.Error(),
			})
			continue
		}
		m.Assets[r.key] = r.asset
	}
	m.BuildInfo = &manifest.BuildInfo{
		Workers:  p.cfg.Workers,
		Quality:  p.cfg.Quality,
		Encoders: p.registry.Available(),
	}
	if remote, ok := p.cfg.Emitter.(ObjectStoreEmitter); ok {
		m.BuildInfo.Bucket = remote.Store.Bucket()
	}
	m.ComputeStats()

	if len(m.Failures) == len(sources) {
		// Surface the first cause so its kind drives the exit code.
		return m, fmt.Errorf("all %d images failed to process: %w", len(sources), results[0].err)
	}
	if len(m.Failures) > 0 {
		p.logger.Printf("warning: %d of %d images had errors", len(m.Failures), len(sources))
	}
	return m, nil
}
