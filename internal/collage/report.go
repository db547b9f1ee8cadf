package collage

import (
	"fmt"
	"math"
)

// mmPerInch converts page millimeters to inches for DPI computation.
const mmPerInch = 25.4

// ExportReport contains metadata about a collage export for quality analysis.
type ExportReport struct {
	PageCount  int          `json:"page_count"`
	ImageCount int          `json:"image_count"`
	CellWidth  float64      `json:"cell_width_mm"`
	CellHeight float64      `json:"cell_height_mm"`
	Pages      []ReportPage `json:"pages"`
	Warnings   []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int           `json:"page_number"`
	Images     []ReportImage `json:"images"`
}

// ReportImage describes a single image placement in the export report.
type ReportImage struct {
	ID           string  `json:"id"`
	SlotIndex    int     `json:"slot_index"`
	WidthMM      float64 `json:"width_mm"`
	HeightMM     float64 `json:"height_mm"`
	EffectiveDPI float64 `json:"effective_dpi"`
	LowRes       bool    `json:"low_res"`
}

// EffectiveDPI returns the print resolution of an image rendered at widthMM.
// Aspect ratio is preserved, so the width alone determines the scale.
func EffectiveDPI(pixelWidth int, widthMM float64) float64 {
	if widthMM <= 0 {
		return 0
	}
	dpi := float64(pixelWidth) / widthMM * mmPerInch
	return math.Round(dpi*10) / 10
}

// BuildReport summarizes placements page by page. Images rendered below
// lowResDPI are flagged; a threshold <= 0 disables the check.
func BuildReport(placements []Placement, grid Grid, lowResDPI float64) *ExportReport {
	cellW, cellH := grid.CellSize()
	report := &ExportReport{
		ImageCount: len(placements),
		CellWidth:  cellW,
		CellHeight: cellH,
		Warnings:   []string{},
	}

	for _, p := range placements {
		for len(report.Pages) <= p.Page {
			report.Pages = append(report.Pages, ReportPage{PageNumber: len(report.Pages) + 1})
		}
		dpi := EffectiveDPI(p.Image.Width, p.W)
		img := ReportImage{
			ID:           p.Image.ID,
			SlotIndex:    p.Slot,
			WidthMM:      p.W,
			HeightMM:     p.H,
			EffectiveDPI: dpi,
			LowRes:       lowResDPI > 0 && dpi < lowResDPI,
		}
		report.Pages[p.Page].Images = append(report.Pages[p.Page].Images, img)
		if img.LowRes {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Page %d: %s has low resolution (%.0f DPI)", p.Page+1, p.Image.ID, dpi))
		}
	}
	report.PageCount = len(report.Pages)
	return report
}
