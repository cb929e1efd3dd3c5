// Package decoder reconstructs an image from its compressed representation
// by attractor iteration: starting from seeded noise, every range block is
// rebuilt from its mapped domain block, a fixed number of times.
package decoder

import (
	"fmt"
	"time"

	"fractalifs/internal/logging"
	"fractalifs/internal/parallel"
	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
	"fractalifs/pkg/record"
)

const (
	// DefaultIterations is the iteration count used when none is configured
	DefaultIterations = 8
	// DefaultSeed is the noise seed used when none is configured
	DefaultSeed uint32 = 1234
)

// IterationFunc observes the image after each iteration. Iteration 0 is the
// initial noise. The slice is only valid during the call.
type IterationFunc func(iteration int, img []float64) error

// Decoder reconstructs images of one fixed geometry.
type Decoder struct {
	geom    config.Geometry
	workers int
}

// New creates a decoder. workers bounds the goroutines used within one
// iteration; values below 1 mean sequential.
func New(geom config.Geometry, workers int) *Decoder {
	if workers < 1 {
		workers = 1
	}
	return &Decoder{geom: geom, workers: workers}
}

// Decompress runs exactly iterations steps from Noise(N², seed) and returns
// the final N² samples. rep is not modified.
func (d *Decoder) Decompress(rep *record.Representation, iterations int, seed uint32) ([]float64, error) {
	return d.DecompressFunc(rep, iterations, seed, nil)
}

// DecompressFunc is Decompress with an observer called on the initial noise
// and after every step. An error from fn stops decoding and is returned.
func (d *Decoder) DecompressFunc(rep *record.Representation, iterations int, seed uint32, fn IterationFunc) ([]float64, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("iterations must be non-negative, got %d", iterations)
	}
	if err := rep.Validate(d.geom); err != nil {
		return nil, err
	}

	log := logging.Logger()
	start := time.Now()

	current := Noise(d.geom.Pixels(), seed)
	next := make([]float64, len(current))

	if fn != nil {
		if err := fn(0, current); err != nil {
			return nil, fmt.Errorf("iteration 0: %w", err)
		}
	}

	for i := 1; i <= iterations; i++ {
		d.Step(rep, current, next)
		current, next = next, current

		if fn != nil {
			if err := fn(i, current); err != nil {
				return nil, fmt.Errorf("iteration %d: %w", i, err)
			}
		}
	}

	log.Debug("attractor iterated",
		"iterations", iterations,
		"seed", seed,
		"elapsed", time.Since(start))

	return current, nil
}

// Step applies every mapping of rep once. It reads only current and writes
// every sample of next; the two must not overlap. rep must already be
// valid for the decoder's geometry.
func (d *Decoder) Step(rep *record.Representation, current, next []float64) {
	ds := d.geom.DomainSize
	rs := d.geom.RangeSize
	n := d.geom.ImageSize

	parallel.For(len(rep.Mappings), d.workers, func(first, last int) {
		domainBlock := make([]float64, ds*ds)
		transformed := make([]float64, ds*ds)
		rangeBlock := make([]float64, rs*rs)

		for b := first; b < last; b++ {
			m := rep.Mappings[b]

			blocks.Extract(domainBlock, current, n, m.Domain, ds)
			blocks.ApplyTransformInto(transformed, domainBlock, m.Symmetry, ds)
			blocks.Downscale2xInto(rangeBlock, transformed, ds)

			contrast := float64(m.Contrast)
			offset := float64(m.Offset)
			for i, v := range rangeBlock {
				rangeBlock[i] = contrast*v + offset
			}

			blocks.Insert(next, rangeBlock, n, b, rs)
		}
	})
}
