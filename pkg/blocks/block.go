package blocks

// Downscale2x halves a size×size block with an unweighted 2x2 box filter.
// size must be even.
func Downscale2x(block []float64, size int) []float64 {
	half := size / 2
	dst := make([]float64, half*half)
	Downscale2xInto(dst, block, size)
	return dst
}

// Downscale2xInto writes the (size/2)×(size/2) box-filtered block into dst.
func Downscale2xInto(dst, block []float64, size int) {
	half := size / 2
	for y := 0; y < half; y++ {
		top := 2 * y * size
		bottom := top + size
		for x := 0; x < half; x++ {
			sx := 2 * x
			sum := block[top+sx] + block[top+sx+1] + block[bottom+sx] + block[bottom+sx+1]
			dst[y*half+x] = sum * 0.25
		}
	}
}

// Origin returns the top-left pixel of block blockIndex on a grid of
// size×size blocks covering an imageSize×imageSize image. Blocks are
// numbered row-major.
func Origin(imageSize, blockIndex, size int) (x, y int) {
	perSide := imageSize / size
	return (blockIndex % perSide) * size, (blockIndex / perSide) * size
}

// Extract copies block blockIndex of img into dst (size*size samples).
func Extract(dst, img []float64, imageSize, blockIndex, size int) {
	ox, oy := Origin(imageSize, blockIndex, size)
	for y := 0; y < size; y++ {
		row := (oy+y)*imageSize + ox
		copy(dst[y*size:(y+1)*size], img[row:row+size])
	}
}

// Insert writes block into position blockIndex of img.
func Insert(img, block []float64, imageSize, blockIndex, size int) {
	ox, oy := Origin(imageSize, blockIndex, size)
	for y := 0; y < size; y++ {
		row := (oy+y)*imageSize + ox
		copy(img[row:row+size], block[y*size:(y+1)*size])
	}
}
