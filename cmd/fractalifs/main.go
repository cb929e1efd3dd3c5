package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fractalifs/internal/logging"
	"fractalifs/pkg/config"
	"fractalifs/pkg/fractal"
)

func main() {
	// Parse command line arguments
	mode := flag.String("mode", "roundtrip", "Operation: compress, decompress, roundtrip or init-config")
	inputPath := flag.String("input", "", "Input image (compress, roundtrip) or record file (decompress)")
	outputPath := flag.String("output", "", "Output record (compress) or reconstructed image (decompress, roundtrip)")
	recordPath := flag.String("record", "", "Record file written by roundtrip (default: <input>.yaml)")
	configPath := flag.String("config", "fractalifs.yaml", "YAML configuration file")
	iterations := flag.Int("iterations", -1, "Decoding iterations (overrides config)")
	seed := flag.Int64("seed", -1, "Noise seed for decoding (overrides config)")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (overrides config)")
	saveIterations := flag.Bool("save-iterations", false, "Save every decoding iteration as an image")
	iterationsDir := flag.String("iterations-dir", "", "Directory for iteration frames (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *mode == "init-config" {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Command line flags take precedence over the file
	if *iterations >= 0 {
		cfg.Decode.Iterations = *iterations
	}
	if *seed >= 0 {
		cfg.Decode.Seed = uint32(*seed)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *saveIterations {
		cfg.Output.SaveIterations = true
	}
	if *iterationsDir != "" {
		cfg.Output.IterationsDir = *iterationsDir
	}
	if *verbose {
		cfg.Output.Verbose = true
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	codec, err := fractal.NewCodec(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("FRACTAL (IFS) IMAGE COMPRESSION")
	fmt.Printf("Image %dx%d, range blocks %d, domain blocks %d\n",
		cfg.Geometry.ImageSize, cfg.Geometry.ImageSize, cfg.Geometry.RangeSize, cfg.Geometry.DomainSize)
	fmt.Println("================================")

	startTime := time.Now()

	switch *mode {
	case "compress":
		out := defaultPath(*outputPath, *inputPath, ".yaml")
		rep, err := codec.CompressFile(*inputPath, out)
		if err != nil {
			log.Fatalf("Compression failed: %v", err)
		}
		stats := codec.GetStats()
		fmt.Printf("\nCompressed %s into %d mappings in %.2f seconds\n", *inputPath, len(rep.Mappings), time.Since(startTime).Seconds())
		fmt.Printf("Record saved to: %s\n", out)
		fmt.Printf("Total residual error: %.3f (worst block %d: %.3f)\n", stats.TotalError, stats.MaxErrorBlock, stats.MaxError)

	case "decompress":
		out := defaultPath(*outputPath, *inputPath, ".png")
		if _, err := codec.DecompressFile(*inputPath, out); err != nil {
			log.Fatalf("Decompression failed: %v", err)
		}
		fmt.Printf("\nReconstructed %s in %d iterations (%.2f seconds)\n", *inputPath, cfg.Decode.Iterations, time.Since(startTime).Seconds())
		fmt.Printf("Image saved to: %s\n", out)

	case "roundtrip":
		rec := defaultPath(*recordPath, *inputPath, ".yaml")
		out := *outputPath
		if out == "" {
			out = strings.TrimSuffix(*inputPath, filepath.Ext(*inputPath)) + "_reconstructed.png"
		}
		report, err := codec.RoundTrip(*inputPath, rec, out)
		if err != nil {
			log.Fatalf("Round trip failed: %v", err)
		}
		fmt.Printf("\nRound trip completed in %.2f seconds\n", time.Since(startTime).Seconds())
		fmt.Printf("Record saved to: %s\n", rec)
		fmt.Printf("Image saved to: %s\n\n", out)

		fmt.Printf("Reconstruction Metrics:\n")
		fmt.Printf("=======================\n")
		fmt.Printf("Root Mean Square Error (RMSE): %.4f\n", report.RMSE)
		fmt.Printf("Peak Signal-to-Noise Ratio (PSNR): %.2f dB\n", report.PSNR)
		fmt.Printf("Structural Similarity Index (SSIM): %.4f\n", report.SSIM)
		fmt.Printf("Entropy Difference: %.4f bits\n", report.EntropyDiff)

	default:
		log.Fatalf("Unknown mode %q (expected compress, decompress, roundtrip or init-config)", *mode)
	}

	if cfg.Output.SaveIterations {
		fmt.Printf("\nIteration frames saved to: %s\n", cfg.Output.IterationsDir)
	}
}

// defaultPath returns path, or input with its extension replaced by ext.
func defaultPath(path, input, ext string) string {
	if path != "" {
		return path
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
