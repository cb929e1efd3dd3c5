package domain

import (
	"math"
	"math/rand"
	"testing"

	"fractalifs/pkg/blocks"
	"fractalifs/pkg/config"
)

var testGeometry = config.Geometry{ImageSize: 32, RangeSize: 4, DomainSize: 8}

func randomImage(geom config.Geometry, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	img := make([]float64, geom.Pixels())
	for i := range img {
		img[i] = rng.Float64() * 255
	}
	return img
}

// TestBuildMatchesComposition checks every variant against transform-then-downscale
func TestBuildMatchesComposition(t *testing.T) {
	img := randomImage(testGeometry, 1)
	idx := Build(testGeometry, img, 1)

	if idx.NumDomains() != testGeometry.NumDomainBlocks() {
		t.Fatalf("Expected %d domains, got %d", testGeometry.NumDomainBlocks(), idx.NumDomains())
	}
	if idx.Len() != testGeometry.NumDomainBlocks()*blocks.SymmetryCount {
		t.Fatalf("Expected %d variants, got %d", testGeometry.NumDomainBlocks()*8, idx.Len())
	}

	d := testGeometry.DomainSize
	domainBlock := make([]float64, d*d)

	for di := 0; di < idx.NumDomains(); di++ {
		blocks.Extract(domainBlock, img, testGeometry.ImageSize, di, d)

		for s := 0; s < blocks.SymmetryCount; s++ {
			expected := blocks.Downscale2x(blocks.ApplyTransform(domainBlock, s, d), d)
			v := idx.Variant(di, s)

			if len(v.Samples) != len(expected) {
				t.Fatalf("Variant (%d,%d): expected %d samples, got %d", di, s, len(expected), len(v.Samples))
			}

			var mean float64
			for i := range expected {
				if math.Abs(v.Samples[i]-expected[i]) > 1e-9 {
					t.Fatalf("Variant (%d,%d) sample %d: expected %f, got %f", di, s, i, expected[i], v.Samples[i])
				}
				mean += expected[i]
			}
			mean /= float64(len(expected))

			var energy float64
			for i := range expected {
				dev := expected[i] - mean
				energy += dev * dev
				if math.Abs(v.Centered[i]-dev) > 1e-9 {
					t.Fatalf("Variant (%d,%d) centered %d: expected %f, got %f", di, s, i, dev, v.Centered[i])
				}
			}

			if math.Abs(v.Mean-mean) > 1e-9 {
				t.Errorf("Variant (%d,%d): expected mean %f, got %f", di, s, mean, v.Mean)
			}
			if math.Abs(v.Energy-energy) > 1e-6 {
				t.Errorf("Variant (%d,%d): expected energy %f, got %f", di, s, energy, v.Energy)
			}
		}
	}
}

// TestBuildParallelMatchesSequential checks worker count does not change results
func TestBuildParallelMatchesSequential(t *testing.T) {
	img := randomImage(testGeometry, 2)
	seq := Build(testGeometry, img, 1)
	par := Build(testGeometry, img, 4)

	for di := 0; di < seq.NumDomains(); di++ {
		for s := 0; s < blocks.SymmetryCount; s++ {
			a, b := seq.Variant(di, s), par.Variant(di, s)
			if a.Mean != b.Mean || a.Energy != b.Energy {
				t.Fatalf("Variant (%d,%d) differs between sequential and parallel builds", di, s)
			}
		}
	}
}

// TestConstantImageHasZeroEnergy covers the degenerate case
func TestConstantImageHasZeroEnergy(t *testing.T) {
	img := make([]float64, testGeometry.Pixels())
	for i := range img {
		img[i] = 128
	}

	idx := Build(testGeometry, img, 2)
	for di := 0; di < idx.NumDomains(); di++ {
		for s := 0; s < blocks.SymmetryCount; s++ {
			v := idx.Variant(di, s)
			if v.Energy != 0 {
				t.Errorf("Variant (%d,%d): expected zero energy, got %g", di, s, v.Energy)
			}
			if v.Mean != 128 {
				t.Errorf("Variant (%d,%d): expected mean 128, got %f", di, s, v.Mean)
			}
		}
	}
}

// TestVariantIndexRoundTrip checks the flattened numbering
func TestVariantIndexRoundTrip(t *testing.T) {
	for v := 0; v < 100; v++ {
		d, s := SplitVariantIndex(v)
		if VariantIndex(d, s) != v {
			t.Errorf("Variant %d split into (%d,%d) which maps back to %d", v, d, s, VariantIndex(d, s))
		}
		if s < 0 || s >= blocks.SymmetryCount {
			t.Errorf("Variant %d: symmetry %d out of range", v, s)
		}
	}

	if VariantIndex(3, 5) != 29 {
		t.Errorf("Expected VariantIndex(3,5)=29, got %d", VariantIndex(3, 5))
	}
}
