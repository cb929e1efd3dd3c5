// Package visualization writes the intermediate images of attractor
// iteration to disk so convergence can be inspected frame by frame.
package visualization

import (
	"fmt"
	"path/filepath"

	"fractalifs/pkg/imageio"
)

// Recorder saves every image it observes as a numbered frame.
type Recorder struct {
	// outputDir receives the frames
	outputDir string

	// size is the image side length
	size int

	// ext selects the frame format (".png" by default)
	ext string

	// frames lists the written files in order
	frames []string
}

// NewRecorder creates a recorder writing size×size PNG frames into outputDir.
func NewRecorder(outputDir string, size int) *Recorder {
	return &Recorder{
		outputDir: outputDir,
		size:      size,
		ext:       ".png",
	}
}

// WithFormat switches the frame format to the given file extension
// (for example ".bmp" or ".jpg").
func (r *Recorder) WithFormat(ext string) *Recorder {
	r.ext = ext
	return r
}

// FramePath returns the file name used for an iteration.
func (r *Recorder) FramePath(iteration int) string {
	return filepath.Join(r.outputDir, fmt.Sprintf("iteration_%03d%s", iteration, r.ext))
}

// Observe saves img as the frame for iteration. Its signature matches
// decoder.IterationFunc.
func (r *Recorder) Observe(iteration int, img []float64) error {
	path := r.FramePath(iteration)
	if err := imageio.SaveGray(path, img, r.size); err != nil {
		return fmt.Errorf("failed to save frame %d: %w", iteration, err)
	}
	r.frames = append(r.frames, path)
	return nil
}

// Frames returns the paths written so far.
func (r *Recorder) Frames() []string {
	return append([]string(nil), r.frames...)
}
