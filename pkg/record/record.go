// Package record holds the compressed representation of one image: one
// affine block mapping per range block, plus the geometry it was made for.
// It also provides the checked conversions to and from plain structured
// records used for persistence.
package record

import (
	"errors"
	"fmt"

	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
)

var (
	// ErrInvalidMappingIndex indicates a domain index or symmetry code out of range
	ErrInvalidMappingIndex = errors.New("invalid mapping index")
	// ErrMalformedRecord indicates a structured record that cannot be converted
	ErrMalformedRecord = errors.New("malformed compressed record")
)

// Mapping rebuilds one range block from a domain block:
// block = Contrast * downscale(transform(domain, Symmetry)) + Offset.
// Contrast and Offset are stored at single precision.
type Mapping struct {
	Domain   int
	Symmetry int
	Contrast float32
	Offset   float32
}

// Representation is the compressed form of one image. Mappings are ordered
// by range block index (row-major over the range grid). It is never
// modified after the encoder returns it.
type Representation struct {
	Geometry      config.Geometry
	SymmetryCount int
	Mappings      []Mapping
}

// New returns an empty representation sized for geom.
func New(geom config.Geometry) *Representation {
	return &Representation{
		Geometry:      geom,
		SymmetryCount: blocks.SymmetryCount,
		Mappings:      make([]Mapping, geom.NumRangeBlocks()),
	}
}

// Validate checks the representation against geom: matching metadata,
// one mapping per range block and every index in range.
func (r *Representation) Validate(geom config.Geometry) error {
	if r.Geometry != geom {
		return fmt.Errorf("%w: record geometry %+v does not match %+v", ErrMalformedRecord, r.Geometry, geom)
	}
	if r.SymmetryCount != blocks.SymmetryCount {
		return fmt.Errorf("%w: symmetry count %d, expected %d", ErrMalformedRecord, r.SymmetryCount, blocks.SymmetryCount)
	}
	if len(r.Mappings) != geom.NumRangeBlocks() {
		return fmt.Errorf("%w: %d mappings, expected %d", ErrMalformedRecord, len(r.Mappings), geom.NumRangeBlocks())
	}

	numDomains := geom.NumDomainBlocks()
	for b, m := range r.Mappings {
		if m.Domain < 0 || m.Domain >= numDomains {
			return fmt.Errorf("%w: block %d refers to domain %d, valid range [0,%d)",
				ErrInvalidMappingIndex, b, m.Domain, numDomains)
		}
		if !blocks.ValidSymmetry(m.Symmetry) {
			return fmt.Errorf("%w: block %d has symmetry %d, valid range [0,%d)",
				ErrInvalidMappingIndex, b, m.Symmetry, blocks.SymmetryCount)
		}
	}

	return nil
}
