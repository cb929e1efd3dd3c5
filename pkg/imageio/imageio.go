// Package imageio converts between image files and the flat grayscale
// sample slices used by the codec. Samples are row-major float64 values on
// the 8-bit intensity scale [0, 255].
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when saving .jpg/.jpeg files.
const DefaultJPEGQuality = 95

// LoadImage decodes an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are
// recognized.
func LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadGray loads an image file as size×size grayscale samples, resizing it
// with Lanczos resampling when its dimensions differ.
func LoadGray(path string, size int) ([]float64, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return ToGray(Fit(img, size)), nil
}

// Fit returns img unchanged when it is already size×size, otherwise a
// resized copy.
func Fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
}

// ToGray converts img to row-major luma samples in [0, 255].
func ToGray(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			result[y*width+x] = float64(g.Y)
		}
	}

	return result
}

// FromGray converts size×size samples into an 8-bit grayscale image. Values
// are clipped to [0, 255] and rounded.
func FromGray(data []float64, size int) (*image.Gray, error) {
	if len(data) != size*size {
		return nil, fmt.Errorf("expected %d samples for a %dx%d image, got %d", size*size, size, size, len(data))
	}

	img := image.NewGray(image.Rect(0, 0, size, size))
	for i, v := range data {
		img.Pix[i] = Quantize(v)
	}
	return img, nil
}

// Quantize clips v to [0, 255] and rounds it to the nearest 8-bit value.
// NaN maps to 0.
func Quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// SaveGray writes size×size samples to path. The format follows the file
// extension: .png, .jpg/.jpeg, .bmp, .tif/.tiff.
func SaveGray(path string, data []float64, size int) error {
	img, err := FromGray(data, size)
	if err != nil {
		return err
	}
	return SaveImage(path, img)
}

// SaveImage encodes img by the extension of path, creating parent
// directories as needed.
func SaveImage(path string, img image.Image) error {
	encoded, err := EncodeImage(img, filepath.Ext(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// EncodeImage encodes img in the named format. A leading dot is ignored.
func EncodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	format = strings.TrimPrefix(strings.ToLower(format), ".")
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: DefaultJPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "bmp":
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode BMP: %w", err)
		}
	case "tif", "tiff":
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("failed to encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}

	return buf.Bytes(), nil
}
