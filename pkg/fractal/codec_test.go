package fractal

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"fractalifs/pkg/config"
	"fractalifs/pkg/imageio"
	"fractalifs/pkg/record"
)

// testConfig returns a configuration for a small geometry
func testConfig(size int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Geometry = config.Geometry{ImageSize: size, RangeSize: 4, DomainSize: 8}
	cfg.Processing.NumCores = 2
	return cfg
}

// gradientImage is fitted exactly by every domain block at contrast 0.5
func gradientImage(size int) []float64 {
	img := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img[y*size+x] = float64(4*x + 2*y)
		}
	}
	return img
}

func constantImage(size int, value float64) []float64 {
	img := make([]float64, size*size)
	for i := range img {
		img[i] = value
	}
	return img
}

// checkConstantRoundTrip compresses a flat image and decodes it with several seeds
func checkConstantRoundTrip(t *testing.T, size int) {
	cfg := testConfig(size)
	cfg.Processing.NumCores = 8

	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	rep, err := codec.Compress(constantImage(size, 128))
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	if len(rep.Mappings) != cfg.Geometry.NumRangeBlocks() {
		t.Fatalf("Expected %d mappings, got %d", cfg.Geometry.NumRangeBlocks(), len(rep.Mappings))
	}

	first := rep.Mappings[0].Contrast
	for b, m := range rep.Mappings {
		if m.Contrast != first || math.Abs(float64(m.Contrast)) > 1e-6 {
			t.Fatalf("Block %d: expected the same near-zero contrast, got %f", b, m.Contrast)
		}
		if math.Abs(float64(m.Offset)-128) > 1e-4 {
			t.Fatalf("Block %d: expected offset 128, got %f", b, m.Offset)
		}
	}

	for _, seed := range []uint32{0, 42, 1234} {
		for _, iterations := range []int{1, 8} {
			cfg.Decode.Seed = seed
			cfg.Decode.Iterations = iterations

			img, err := codec.Decompress(rep)
			if err != nil {
				t.Fatalf("Decompress failed: %v", err)
			}
			if len(img) != cfg.Geometry.Pixels() {
				t.Fatalf("Expected %d samples, got %d", cfg.Geometry.Pixels(), len(img))
			}
			for i, v := range img {
				if math.Abs(v-128) > 1e-3 {
					t.Fatalf("seed %d iterations %d: sample %d = %f", seed, iterations, i, v)
				}
			}
		}
	}
}

// TestConstantImageRoundTrip runs the flat-image scenario on a small image
func TestConstantImageRoundTrip(t *testing.T) {
	checkConstantRoundTrip(t, 64)
}

// TestConstantImageRoundTrip512 runs the flat-image scenario at full size
func TestConstantImageRoundTrip512(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping full-size exhaustive search in short mode")
	}
	checkConstantRoundTrip(t, 512)
}

// TestRoundTripFiles runs the whole file pipeline on a gradient image
func TestRoundTripFiles(t *testing.T) {
	const size = 32
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "input.png")
	if err := imageio.SaveGray(inputPath, gradientImage(size), size); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	cfg := testConfig(size)
	cfg.Output.SaveIterations = true
	cfg.Output.IterationsDir = filepath.Join(dir, "frames")

	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	recordPath := filepath.Join(dir, "input.yaml")
	outputPath := filepath.Join(dir, "output.png")

	report, err := codec.RoundTrip(inputPath, recordPath, outputPath)
	if err != nil {
		t.Fatalf("RoundTrip failed: %v", err)
	}

	for _, path := range []string{recordPath, outputPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}

	// Contrast 0.5 halves the distance to the attractor every iteration.
	if report.RMSE > 2 {
		t.Errorf("Expected RMSE below 2 for an exactly self-similar image, got %f", report.RMSE)
	}
	if report != codec.GetMetrics() {
		t.Errorf("GetMetrics does not match the returned report")
	}
	if codec.GetStats().TotalError > 1e-6 {
		t.Errorf("Expected near-zero residual error, got %g", codec.GetStats().TotalError)
	}

	frames, err := filepath.Glob(filepath.Join(cfg.Output.IterationsDir, "iteration_*.png"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(frames) != cfg.Decode.Iterations+1 {
		t.Errorf("Expected %d frames, got %d", cfg.Decode.Iterations+1, len(frames))
	}

	rep, err := record.Load(recordPath)
	if err != nil {
		t.Fatalf("Failed to reload record: %v", err)
	}
	for b, m := range rep.Mappings {
		if m.Contrast != 0.5 {
			t.Errorf("Block %d: expected contrast 0.5, got %f", b, m.Contrast)
			break
		}
	}
}

// TestDecompressFileRejectsCorruptRecord surfaces bad domain indices
func TestDecompressFileRejectsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(16)

	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	rep := record.New(cfg.Geometry)
	rep.Mappings[2].Domain = cfg.Geometry.NumDomainBlocks()

	recordPath := filepath.Join(dir, "bad.yaml")
	if err := record.Save(recordPath, rep); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	outputPath := filepath.Join(dir, "out.png")
	if _, err := codec.DecompressFile(recordPath, outputPath); !errors.Is(err, record.ErrInvalidMappingIndex) {
		t.Errorf("Expected ErrInvalidMappingIndex, got %v", err)
	}
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Errorf("Expected no output image for a corrupt record")
	}
}

// TestNewCodecRejectsInvalidConfig validates up front
func TestNewCodecRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(30)
	if _, err := NewCodec(cfg); !errors.Is(err, config.ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}

	codec, err := NewCodec(nil)
	if err != nil {
		t.Fatalf("NewCodec(nil) failed: %v", err)
	}
	if codec.Config().Geometry != config.DefaultGeometry() {
		t.Errorf("Expected default geometry, got %+v", codec.Config().Geometry)
	}
}

// TestCompressFileMissingInput surfaces load errors
func TestCompressFileMissingInput(t *testing.T) {
	codec, err := NewCodec(testConfig(16))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	dir := t.TempDir()
	if _, err := codec.CompressFile(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.yaml")); err == nil {
		t.Errorf("Expected an error for a missing input")
	}
}
