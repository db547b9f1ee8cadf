package collage

import "fmt"

// Fit returns the largest size with the image's aspect ratio that fits inside
// a cellW x cellH box. The image is never cropped and never exceeds the box.
func Fit(width, height int, cellW, cellH float64) (w, h float64, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: image size must be positive, got %dx%d", ErrInvalidImage, width, height)
	}
	if cellW <= 0 || cellH <= 0 {
		return 0, 0, fmt.Errorf("%w: cell size must be positive, got %.2fx%.2f", ErrInvalidConfiguration, cellW, cellH)
	}

	aspect := float64(height) / float64(width)
	boxAspect := cellH / cellW

	// Relatively taller than the cell: height is the binding dimension.
	// Equal aspects take the width branch and fill the cell exactly.
	if aspect > boxAspect {
		h = cellH
		w = h / aspect
	} else {
		w = cellW
		h = w * aspect
	}
	return w, h, nil
}

// Center returns the top-left position that centers a w x h box inside cell.
func Center(cell Rect, w, h float64) (x, y float64) {
	x = cell.X + (cell.W-w)/2
	y = cell.Y + (cell.H-h)/2
	return x, y
}
