package collage

import (
	"fmt"
	"math"
)

// Severity levels for validation warnings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// validateEps is the rounding slack allowed in containment checks (mm).
const validateEps = 0.01

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	Page     int    `json:"page"`
	Slot     int    `json:"slot"`
	ImageID  string `json:"image_id"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("page %d slot %d (%s): %s: %s", w.Page+1, w.Slot, w.ImageID, w.Severity, w.Message)
}

// Validate checks placements for layout integrity: every rendered box must
// stay inside its cell, every cell inside the page margins, and the aspect
// ratio of the source image must be preserved.
func Validate(placements []Placement, grid Grid) []ValidationWarning {
	var warnings []ValidationWarning
	content := Rect{
		X: grid.Margin,
		Y: grid.Margin,
		W: grid.PageWidth - 2*grid.Margin,
		H: grid.PageHeight - 2*grid.Margin,
	}

	for _, p := range placements {
		warn := func(severity, format string, args ...any) {
			warnings = append(warnings, ValidationWarning{
				Page:     p.Page,
				Slot:     p.Slot,
				ImageID:  p.Image.ID,
				Message:  fmt.Sprintf(format, args...),
				Severity: severity,
			})
		}

		if !content.Contains(p.Cell, validateEps) {
			warn(SeverityError, "cell (%.2f, %.2f, %.2fx%.2f) extends into the page margin",
				p.Cell.X, p.Cell.Y, p.Cell.W, p.Cell.H)
		}
		if !p.Cell.Contains(p.Rect(), validateEps) {
			warn(SeverityError, "image box (%.2f, %.2f, %.2fx%.2f) overflows its cell",
				p.X, p.Y, p.W, p.H)
		}
		if p.W <= 0 || p.H <= 0 || p.Image.Width <= 0 || p.Image.Height <= 0 {
			warn(SeverityError, "empty image box %.2fx%.2f", p.W, p.H)
			continue
		}
		want := float64(p.Image.Width) / float64(p.Image.Height)
		got := p.W / p.H
		if math.Abs(got-want) > 1e-6*math.Max(1, want) {
			warn(SeverityWarning, "aspect ratio %.6f differs from source %.6f", got, want)
		}
	}
	return warnings
}

// HasErrors reports whether any warning has error severity.
func HasErrors(warnings []ValidationWarning) bool {
	for _, w := range warnings {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}
