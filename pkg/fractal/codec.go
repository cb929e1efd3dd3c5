// Package fractal ties the block codec to files: it loads images, runs the
// encoder or decoder with the configured geometry, persists compressed
// records and reports reconstruction quality.
package fractal

import (
	"fmt"
	"time"

	"fractalifs/internal/logging"
	"fractalifs/pkg/config"
	"fractalifs/pkg/decoder"
	"fractalifs/pkg/encoder"
	"fractalifs/pkg/imageio"
	"fractalifs/pkg/metrics"
	"fractalifs/pkg/record"
	"fractalifs/pkg/visualization"
)

// Codec runs compression and decompression for one configuration.
//
// The pipeline consists of:
// 1. Loading the input image as N×N grayscale samples
// 2. Building the domain variants and searching every range block
// 3. Writing the compressed record
// 4. Iterating the block mappings from seeded noise
// 5. Writing the reconstructed image and, optionally, every iteration
type Codec struct {
	// cfg is validated by NewCodec and not modified afterwards
	cfg *config.Config

	enc *encoder.Encoder

	// stats holds the residuals of the last compression
	stats encoder.Stats

	// metrics holds the quality of the last round trip
	metrics metrics.Report
}

// NewCodec creates a codec. A nil cfg selects config.DefaultConfig().
func NewCodec(cfg *config.Config) (*Codec, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Codec{
		cfg: cfg,
		enc: encoder.New(cfg.Geometry, cfg.Processing.NumCores),
	}, nil
}

// Config returns the codec configuration.
func (c *Codec) Config() *config.Config { return c.cfg }

// Compress encodes in-memory samples.
func (c *Codec) Compress(img []float64) (*record.Representation, error) {
	rep, stats, err := c.enc.CompressWithStats(img)
	if err != nil {
		return nil, err
	}
	c.stats = stats
	return rep, nil
}

// Decompress reconstructs samples from rep using the configured iteration
// count and seed. The record's own geometry is used for decoding.
func (c *Codec) Decompress(rep *record.Representation) ([]float64, error) {
	log := logging.Logger()

	geom := rep.Geometry
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", record.ErrMalformedRecord, err)
	}
	if geom != c.cfg.Geometry {
		log.Debug("record geometry differs from configuration",
			"record", geom, "config", c.cfg.Geometry)
	}

	dec := decoder.New(geom, c.cfg.Processing.NumCores)

	var observe decoder.IterationFunc
	if c.cfg.Output.SaveIterations {
		recorder := visualization.NewRecorder(c.cfg.Output.IterationsDir, geom.ImageSize)
		observe = func(iteration int, img []float64) error {
			if err := recorder.Observe(iteration, img); err != nil {
				log.Warn("iteration frame not saved", "iteration", iteration, "err", err)
			}
			return nil
		}
	}

	return dec.DecompressFunc(rep, c.cfg.Decode.Iterations, c.cfg.Decode.Seed, observe)
}

// CompressFile compresses the image at inputPath and writes the record to
// recordPath.
func (c *Codec) CompressFile(inputPath, recordPath string) (*record.Representation, error) {
	log := logging.Logger()

	// Step 1: Load the input image
	img, err := imageio.LoadGray(inputPath, c.cfg.Geometry.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	log.Info("image loaded", "path", inputPath, "size", c.cfg.Geometry.ImageSize)

	// Step 2: Search every range block
	rep, err := c.Compress(img)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	log.Info("image compressed",
		"mappings", len(rep.Mappings),
		"total_error", c.stats.TotalError,
		"elapsed", c.stats.Elapsed)

	// Step 3: Persist the record
	if err := record.Save(recordPath, rep); err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}
	log.Info("record written", "path", recordPath)

	return rep, nil
}

// DecompressFile reads a record from recordPath and writes the
// reconstructed image to outputPath.
func (c *Codec) DecompressFile(recordPath, outputPath string) ([]float64, error) {
	log := logging.Logger()
	start := time.Now()

	// Step 1: Load the record
	rep, err := record.Load(recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	// Step 2: Iterate the mappings
	img, err := c.Decompress(rep)
	if err != nil {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}
	log.Info("image reconstructed",
		"iterations", c.cfg.Decode.Iterations,
		"seed", c.cfg.Decode.Seed,
		"elapsed", time.Since(start))

	// Step 3: Write the clipped 8-bit image
	if err := imageio.SaveGray(outputPath, img, rep.Geometry.ImageSize); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	log.Info("image written", "path", outputPath)

	return img, nil
}

// RoundTrip compresses inputPath to recordPath, reconstructs it into
// outputPath and measures the reconstruction against the input.
func (c *Codec) RoundTrip(inputPath, recordPath, outputPath string) (metrics.Report, error) {
	if _, err := c.CompressFile(inputPath, recordPath); err != nil {
		return metrics.Report{}, err
	}

	reconstructed, err := c.DecompressFile(recordPath, outputPath)
	if err != nil {
		return metrics.Report{}, err
	}

	original, err := imageio.LoadGray(inputPath, c.cfg.Geometry.ImageSize)
	if err != nil {
		return metrics.Report{}, fmt.Errorf("failed to reload image: %w", err)
	}

	// Compare what a viewer sees: clipped 8-bit intensities.
	quantized := make([]float64, len(reconstructed))
	for i, v := range reconstructed {
		quantized[i] = float64(imageio.Quantize(v))
	}

	c.metrics = metrics.Compare(original, quantized)
	logging.Logger().Info("round trip quality",
		"rmse", c.metrics.RMSE,
		"psnr", c.metrics.PSNR,
		"ssim", c.metrics.SSIM)

	return c.metrics, nil
}

// GetStats returns the residual statistics of the last compression.
func (c *Codec) GetStats() encoder.Stats {
	return c.stats
}

// GetMetrics returns the quality metrics of the last round trip.
func (c *Codec) GetMetrics() metrics.Report {
	return c.metrics
}
