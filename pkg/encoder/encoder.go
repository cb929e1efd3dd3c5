// Package encoder compresses an image into one affine block mapping per
// range block by exhaustive least squares search over the domain variants.
package encoder

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fractalifs/internal/logging"
	"fractalifs/internal/parallel"
	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
	"fractalifs/pkg/domain"
	"fractalifs/pkg/record"
)

// ErrInvalidImageSize indicates an input whose length is not N².
var ErrInvalidImageSize = errors.New("invalid image size")

// EnergyThreshold is the variant energy at or below which a variant is
// treated as constant: its contrast is forced to 0.
const EnergyThreshold = 1e-6

// Match is the best affine fit of one range block.
type Match struct {
	Domain   int
	Symmetry int
	Contrast float64
	Offset   float64
	// Error is the residual sum of squares of the fit.
	Error float64
}

// Stats summarizes the residual errors of one compression run.
type Stats struct {
	TotalError float64
	MaxError   float64
	// MaxErrorBlock is the range block with the largest residual.
	MaxErrorBlock int
	Elapsed       time.Duration
}

// Encoder compresses images of one fixed geometry.
type Encoder struct {
	geom    config.Geometry
	workers int
}

// New creates an encoder. workers bounds the goroutines used for the
// per-block search; values below 1 mean sequential.
func New(geom config.Geometry, workers int) *Encoder {
	if workers < 1 {
		workers = 1
	}
	return &Encoder{geom: geom, workers: workers}
}

// Geometry returns the encoder's geometry.
func (e *Encoder) Geometry() config.Geometry { return e.geom }

// Compress returns the compressed representation of img, which must hold
// exactly N² samples in row-major order.
func (e *Encoder) Compress(img []float64) (*record.Representation, error) {
	rep, _, err := e.CompressWithStats(img)
	return rep, err
}

// CompressWithStats is Compress that also reports residual statistics.
func (e *Encoder) CompressWithStats(img []float64) (*record.Representation, Stats, error) {
	if err := e.geom.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if len(img) != e.geom.Pixels() {
		return nil, Stats{}, fmt.Errorf("%w: got %d samples, expected %d (%dx%d)",
			ErrInvalidImageSize, len(img), e.geom.Pixels(), e.geom.ImageSize, e.geom.ImageSize)
	}

	log := logging.Logger()
	start := time.Now()

	index := domain.Build(e.geom, img, e.workers)
	log.Debug("domain variants built",
		"variants", index.Len(),
		"elapsed", time.Since(start))

	rep := record.New(e.geom)
	errs := make([]float64, len(rep.Mappings))

	r := e.geom.RangeSize
	parallel.For(len(rep.Mappings), e.workers, func(first, last int) {
		target := make([]float64, r*r)
		for b := first; b < last; b++ {
			blocks.Extract(target, img, e.geom.ImageSize, b, r)
			m := Search(index, target)

			rep.Mappings[b] = record.Mapping{
				Domain:   m.Domain,
				Symmetry: m.Symmetry,
				Contrast: float32(m.Contrast),
				Offset:   float32(m.Offset),
			}
			errs[b] = m.Error
		}
	})

	stats := Stats{Elapsed: time.Since(start)}
	for b, v := range errs {
		stats.TotalError += v
		if v > stats.MaxError {
			stats.MaxError = v
			stats.MaxErrorBlock = b
		}
	}

	log.Debug("range blocks matched",
		"blocks", len(rep.Mappings),
		"total_error", stats.TotalError,
		"max_error", stats.MaxError,
		"elapsed", stats.Elapsed)

	return rep, stats, nil
}

// Search finds the variant in index that best fits target (R×R samples)
// under target ≈ contrast*variant + offset. Every variant is scored; ties
// keep the first variant in domain-then-symmetry order.
func Search(index *domain.Index, target []float64) Match {
	targetMean := stat.Mean(target, nil)

	centered := make([]float64, len(target))
	copy(centered, target)
	floats.AddConst(-targetMean, centered)
	targetEnergy := floats.Dot(centered, centered)

	best := Match{Error: math.Inf(1)}
	var bestMean float64

	for d := 0; d < index.NumDomains(); d++ {
		for s := 0; s < blocks.SymmetryCount; s++ {
			v := index.Variant(d, s)

			contrast, residual := fit(v, centered, targetEnergy)
			if residual < best.Error {
				best = Match{Domain: d, Symmetry: s, Contrast: contrast, Error: residual}
				bestMean = v.Mean
			}
		}
	}

	best.Offset = targetMean - best.Contrast*bestMean
	return best
}

// fit returns the least squares contrast of a centered target against one
// variant and the residual sum of squares, clamped at zero.
func fit(v *domain.Variant, centered []float64, targetEnergy float64) (contrast, residual float64) {
	if v.Energy <= EnergyThreshold {
		return 0, targetEnergy
	}

	numerator := floats.Dot(v.Centered, centered)
	contrast = numerator / v.Energy
	residual = targetEnergy - numerator*numerator/v.Energy
	if residual < 0 {
		residual = 0
	}
	return contrast, residual
}
