// Package domain builds the searchable space of domain-block variants for
// one image: every domain block under every symmetry, downscaled to range
// block resolution, with its mean and centered energy precomputed.
package domain

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fractalifs/internal/parallel"
	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
)

// Variant is one domain block after a symmetry transform and 2x downscale.
type Variant struct {
	// Samples holds the R×R downscaled block
	Samples []float64

	// Centered holds Samples minus Mean
	Centered []float64

	// Mean is the arithmetic mean of Samples
	Mean float64

	// Energy is the sum of squared deviations from Mean
	Energy float64
}

// Index holds all variants of one image, grouped per domain block. It is
// read-only after Build and safe for concurrent readers.
type Index struct {
	geom    config.Geometry
	domains [][blocks.SymmetryCount]Variant
}

// VariantIndex flattens a (domain, symmetry) pair. Increasing variant
// indices follow the search order: domain ascending, then symmetry.
func VariantIndex(domain, symmetry int) int {
	return domain*blocks.SymmetryCount + symmetry
}

// SplitVariantIndex is the inverse of VariantIndex.
func SplitVariantIndex(v int) (domain, symmetry int) {
	return v / blocks.SymmetryCount, v % blocks.SymmetryCount
}

// Build computes every variant of img, which must hold geom.Pixels()
// samples. Domain blocks are processed on up to workers goroutines.
func Build(geom config.Geometry, img []float64, workers int) *Index {
	idx := &Index{
		geom:    geom,
		domains: make([][blocks.SymmetryCount]Variant, geom.NumDomainBlocks()),
	}

	d := geom.DomainSize
	r := geom.RangeSize

	parallel.For(len(idx.domains), workers, func(start, end int) {
		// Scratch buffers are per goroutine.
		domainBlock := make([]float64, d*d)
		transformed := make([]float64, d*d)

		for di := start; di < end; di++ {
			blocks.Extract(domainBlock, img, geom.ImageSize, di, d)

			for s := 0; s < blocks.SymmetryCount; s++ {
				blocks.ApplyTransformInto(transformed, domainBlock, s, d)

				samples := make([]float64, r*r)
				blocks.Downscale2xInto(samples, transformed, d)

				idx.domains[di][s] = newVariant(samples)
			}
		}
	})

	return idx
}

func newVariant(samples []float64) Variant {
	mean := stat.Mean(samples, nil)

	centered := make([]float64, len(samples))
	copy(centered, samples)
	floats.AddConst(-mean, centered)

	return Variant{
		Samples:  samples,
		Centered: centered,
		Mean:     mean,
		Energy:   floats.Dot(centered, centered),
	}
}

// Geometry returns the geometry the index was built for.
func (idx *Index) Geometry() config.Geometry { return idx.geom }

// NumDomains is the number of domain blocks.
func (idx *Index) NumDomains() int { return len(idx.domains) }

// Len is the total number of variants (domains × symmetries).
func (idx *Index) Len() int { return len(idx.domains) * blocks.SymmetryCount }

// Variant returns the variant for a domain block and symmetry.
func (idx *Index) Variant(domain, symmetry int) *Variant {
	return &idx.domains[domain][symmetry]
}
