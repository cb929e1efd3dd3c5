// Package metrics measures how closely a reconstructed image matches its
// source. All functions take flat sample slices of equal length on the
// 8-bit intensity scale.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PeakValue is the maximum intensity used for PSNR and SSIM.
const PeakValue = 255.0

// Report holds the reconstruction quality metrics.
type Report struct {
	// RMSE (Root Mean Square Error) of the reconstructed intensities.
	// Lower is better.
	RMSE float64

	// PSNR in dB relative to PeakValue. +Inf for identical inputs.
	PSNR float64

	// SSIM (Structural Similarity Index) computed over the whole image.
	// Values range from -1 to 1, with 1 indicating identical images.
	SSIM float64

	// EntropyDiff is the absolute difference of the 256-bin Shannon
	// entropies of both images.
	EntropyDiff float64
}

// Compare computes every metric of Report. Mismatched or empty inputs give
// the zero Report.
func Compare(original, reconstructed []float64) Report {
	if len(original) != len(reconstructed) || len(original) == 0 {
		return Report{}
	}

	rmse := RMSE(original, reconstructed)
	return Report{
		RMSE:        rmse,
		PSNR:        PSNR(rmse),
		SSIM:        SSIM(original, reconstructed),
		EntropyDiff: math.Abs(Entropy(original) - Entropy(reconstructed)),
	}
}

// RMSE computes the root mean square error.
func RMSE(original, reconstructed []float64) float64 {
	n := len(original)
	if n != len(reconstructed) || n == 0 {
		return 0
	}

	return floats.Distance(original, reconstructed, 2) / math.Sqrt(float64(n))
}

// PSNR converts an RMSE into peak signal-to-noise ratio in dB.
func PSNR(rmse float64) float64 {
	if rmse == 0 {
		return math.Inf(1)
	}
	return 20 * math.Log10(PeakValue/rmse)
}

// SSIM computes the Structural Similarity Index over the whole image
func SSIM(original, reconstructed []float64) float64 {
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * PeakValue) * (k1 * PeakValue)
	c2 := (k2 * PeakValue) * (k2 * PeakValue)

	n := len(original)
	if n != len(reconstructed) || n < 2 {
		return 0
	}

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)

	sigmaX := stat.Variance(original, nil)
	sigmaY := stat.Variance(reconstructed, nil)
	sigmaXY := stat.Covariance(original, reconstructed, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den
	}
	return 0
}

// Entropy computes the Shannon entropy (bits) of the intensities, binned
// into 256 unit-wide bins over [0, 256). Values outside are clamped.
func Entropy(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}

	const numBins = 256
	hist := make([]float64, numBins)
	for _, v := range data {
		var bin int
		switch {
		case math.IsNaN(v) || v < 0:
			bin = 0
		case v >= numBins:
			bin = numBins - 1
		default:
			bin = int(v)
		}
		hist[bin]++
	}

	entropy := 0.0
	for _, count := range hist {
		if count > 0 {
			p := count / float64(n)
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}
