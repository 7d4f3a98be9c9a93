// Package grain synthesizes multi-scale film grain and blends it into 8-bit
// pixel buffers.
//
// A noise mask is the sum of three layers: one at full resolution, one at
// half resolution and one at quarter resolution, the coarse two upsampled
// back to full size. The mask is added identically to every channel.
package grain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

// MinDimension is the smallest accepted image height and width: the
// quarter-resolution layer must hold at least one sample.
const MinDimension = 4

// Compositor builds noise masks and applies them to images. A Compositor is
// safe for concurrent use; it holds configuration only.
type Compositor struct {
	seed          uint64
	interpolation Interpolation
	workers       int
	logger        *slog.Logger
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithSeed fixes the random seed. Two compositors with the same seed produce
// bit-identical masks for identical arguments.
func WithSeed(seed uint64) Option {
	return func(c *Compositor) { c.seed = seed }
}

// WithInterpolation selects the upsampling kernel for the coarse layers.
func WithInterpolation(i Interpolation) Option {
	return func(c *Compositor) { c.interpolation = i }
}

// WithWorkers bounds the number of goroutines used for blending.
// n <= 0 means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *Compositor) { c.workers = n }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

// New returns a Compositor. Without WithSeed the seed is taken from the clock.
func New(opts ...Option) *Compositor {
	c := &Compositor{
		seed:          uint64(time.Now().UnixNano()),
		interpolation: Bilinear,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed returns the seed in use, so a random run can be reproduced.
func (c *Compositor) Seed() uint64 {
	return c.seed
}

// source returns the random source for one scale. Each scale gets its own
// stream so layers can be generated in any order.
func (c *Compositor) source(s Scale) rand.Source {
	return rand.NewPCG(c.seed, uint64(s)+1)
}

// GenerateLayer fills a rows x cols field with samples from dist drawn from
// src. Values are not clamped.
func (c *Compositor) GenerateLayer(rows, cols int, dist Distribution, src rand.Source) (*Field, error) {
	if dist == nil {
		return nil, fmt.Errorf("%w: nil distribution", ErrUnsupportedDistribution)
	}
	f, err := NewField(rows, cols)
	if err != nil {
		return nil, err
	}
	if g, ok := dist.(Gaussian); ok {
		if g.Sigma < 0 || math.IsNaN(g.Sigma) || math.IsInf(g.Sigma, 0) {
			return nil, fmt.Errorf("%w: sigma %g", ErrInvalidIntensity, g.Sigma)
		}
		if g.Sigma == 0 {
			return f, nil
		}
	}
	sample := dist.sampler(src)
	for r := 0; r < rows; r++ {
		row := f.Row(r)
		for i := range row {
			row[i] = sample()
		}
	}
	return f, nil
}

// BuildNoiseMask generates the fine, medium and large layers for mode,
// upsamples the coarse two to rows x cols and returns their sum. The sum is
// not normalized.
func (c *Compositor) BuildNoiseMask(ctx context.Context, rows, cols int, in Intensities, mode Mode) (*Field, error) {
	if rows < MinDimension || cols < MinDimension {
		return nil, fmt.Errorf("%w: %dx%d is below the %dx%d minimum", ErrInvalidDimensions, rows, cols, MinDimension, MinDimension)
	}
	dists, err := mode.Layers(in)
	if err != nil {
		return nil, err
	}

	var layers [3]*Field
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range Scales {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lr, lc := rows/s.Divisor(), cols/s.Divisor()
			layer, err := c.GenerateLayer(lr, lc, dists[i], c.source(s))
			if err != nil {
				return fmt.Errorf("%s layer: %w", s, err)
			}
			if lr != rows || lc != cols {
				layer, err = resize(layer, rows, cols, c.interpolation.kernel())
				if err != nil {
					return fmt.Errorf("upsample %s layer: %w", s, err)
				}
			}
			c.logger.Debug("generated noise layer",
				slog.String("scale", s.String()),
				slog.String("distribution", dists[i].String()),
				slog.Int("rows", lr),
				slog.Int("cols", lc))
			layers[i] = layer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mask := layers[0]
	for _, l := range layers[1:] {
		if err := mask.Add(l); err != nil {
			return nil, err
		}
	}
	return mask, nil
}

// Grain builds a mask for img and applies it, returning a new buffer.
func (c *Compositor) Grain(ctx context.Context, img *PixelBuffer, in Intensities, mode Mode) (*PixelBuffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	mask, err := c.BuildNoiseMask(ctx, img.Rows, img.Cols, in, mode)
	if err != nil {
		return nil, err
	}
	if c.logger.Enabled(ctx, slog.LevelDebug) {
		mean, variance := mask.Stats()
		c.logger.Debug("noise mask ready",
			slog.String("mode", mode.String()),
			slog.Float64("mean", mean),
			slog.Float64("variance", variance))
	}
	return c.ApplyToImage(img, mask)
}
