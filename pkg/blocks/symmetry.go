// Package blocks implements the fixed-size square block operations shared by
// the encoder and the decoder: the eight dihedral symmetries, 2x2 box
// downscaling and block extraction by linear block index.
//
// All blocks are flat row-major []float64 slices of side size. Functions never
// retain their arguments.
package blocks

// SymmetryCount is the number of symmetries of a square block
// (4 quarter turns, each optionally mirrored).
const SymmetryCount = 8

// flipBit selects the mirrored half of the symmetry codes.
const flipBit = 4

// ValidSymmetry reports whether s is a symmetry code in [0, SymmetryCount).
func ValidSymmetry(s int) bool {
	return s >= 0 && s < SymmetryCount
}

// SymmetryMap returns the linear index of the source sample that lands on
// destination (x, y) of a size×size block under the given symmetry.
//
// Bit 2 of symmetry mirrors x, bits 0-1 select the quarter turn. With
// fx = x or size-1-x, the source (row, col) is:
//
//	rot 0: (y, fx)
//	rot 1: (fx, size-1-y)
//	rot 2: (size-1-y, size-1-fx)
//	rot 3: (size-1-fx, y)
//
// symmetry must satisfy ValidSymmetry.
func SymmetryMap(x, y, symmetry, size int) int {
	fx := x
	if symmetry&flipBit != 0 {
		fx = size - 1 - x
	}

	var row, col int
	switch symmetry & 3 {
	case 0:
		row, col = y, fx
	case 1:
		row, col = fx, size-1-y
	case 2:
		row, col = size-1-y, size-1-fx
	default:
		row, col = size-1-fx, y
	}

	return row*size + col
}

// ApplyTransform returns a new block with every sample moved by symmetry.
func ApplyTransform(src []float64, symmetry, size int) []float64 {
	dst := make([]float64, size*size)
	ApplyTransformInto(dst, src, symmetry, size)
	return dst
}

// ApplyTransformInto writes the transformed block into dst, which must hold
// size*size samples and must not alias src.
func ApplyTransformInto(dst, src []float64, symmetry, size int) {
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dst[y*size+x] = src[SymmetryMap(x, y, symmetry, size)]
		}
	}
}
