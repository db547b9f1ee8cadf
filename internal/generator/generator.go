// Package generator turns a folder of images into a collage document:
// it scans the folder, computes the layout, and drives a sink with it.
package generator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/config"
	"github.com/kozaktomas/photo-collage/internal/imagesource"
	"github.com/kozaktomas/photo-collage/internal/pdfsink"
)

// Progress phases
const (
	PhaseScanning = "scanning"
	PhasePlacing  = "placing"
	PhaseWriting  = "writing"
)

type Generator struct {
	logger *log.Logger
}

// ProgressInfo contains progress information for callbacks
type ProgressInfo struct {
	Phase   string // "scanning", "placing", "writing"
	Current int
	Total   int
	ImageID string
	Message string
}

type Options struct {
	InputDir   string
	OutputPath string
	Layout     config.LayoutConfig
	Title      string             // PDF title metadata
	OnProgress func(ProgressInfo) // Optional progress callback
}

// Plan is a computed layout that has not been written anywhere yet.
type Plan struct {
	Grid       collage.Grid
	Images     []collage.Image
	Placements []collage.Placement
	Report     *collage.ExportReport
	Warnings   []collage.ValidationWarning
}

// Pages returns the number of pages in the plan.
func (p *Plan) Pages() int {
	return collage.PageCount(len(p.Placements), p.Grid.Capacity())
}

type Result struct {
	OutputPath string
	Pages      int
	Images     int
	Duration   time.Duration
	Report     *collage.ExportReport
	Warnings   []collage.ValidationWarning
}

func New(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{logger: logger}
}

// Plan scans dir and computes every placement for the given layout.
// The grid is checked before the directory is touched.
func (g *Generator) Plan(dir string, layout config.LayoutConfig) (*Plan, error) {
	grid := layout.Grid()
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	images, err := imagesource.Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", collage.ErrNoImages, dir)
	}
	g.logger.Debug("Scanned input directory", "dir", dir, "images", len(images))

	placements, err := collage.Layout(images, grid)
	if err != nil {
		return nil, err
	}

	warnings := collage.Validate(placements, grid)
	for _, w := range warnings {
		g.logger.Warn("Layout check", "page", w.Page+1, "slot", w.Slot, "image", w.ImageID, "msg", w.Message)
	}
	if collage.HasErrors(warnings) {
		return nil, fmt.Errorf("%w: layout failed integrity checks (%d issues)", collage.ErrInvalidConfiguration, len(warnings))
	}

	report := collage.BuildReport(placements, grid, layout.LowResDPI)
	for _, w := range report.Warnings {
		g.logger.Warn(w)
	}

	cellW, cellH := grid.CellSize()
	g.logger.Debug("Computed layout",
		"pages", report.PageCount, "cols", grid.Cols, "rows", grid.Rows,
		"cell", fmt.Sprintf("%.2fx%.2fmm", cellW, cellH))

	return &Plan{
		Grid:       grid,
		Images:     images,
		Placements: placements,
		Report:     report,
		Warnings:   warnings,
	}, nil
}

// Render drives sink with the plan's placements. It does not finalize the sink.
func (g *Generator) Render(ctx context.Context, plan *Plan, sink collage.Sink, onProgress func(ProgressInfo)) error {
	return collage.Apply(ctx, plan.Placements, sink, func(done, total int) {
		if onProgress != nil {
			onProgress(ProgressInfo{
				Phase:   PhasePlacing,
				Current: done,
				Total:   total,
				ImageID: plan.Placements[done-1].Image.ID,
			})
		}
	})
}

// Generate lays out opts.InputDir, drives sink and finalizes it at
// opts.OutputPath. A nil sink writes a PDF.
func (g *Generator) Generate(ctx context.Context, opts Options, sink collage.Sink) (*Result, error) {
	start := time.Now()
	notify(opts.OnProgress, ProgressInfo{Phase: PhaseScanning, Message: opts.InputDir})

	plan, err := g.Plan(opts.InputDir, opts.Layout)
	if err != nil {
		return nil, err
	}

	if sink == nil {
		sink = PDFSink(opts.Layout, opts.Title)
	}
	if err := g.Render(ctx, plan, sink, opts.OnProgress); err != nil {
		return nil, err
	}

	notify(opts.OnProgress, ProgressInfo{Phase: PhaseWriting, Message: opts.OutputPath})
	if err := sink.Finalize(opts.OutputPath); err != nil {
		return nil, err
	}

	result := &Result{
		OutputPath: opts.OutputPath,
		Pages:      plan.Pages(),
		Images:     len(plan.Placements),
		Duration:   time.Since(start),
		Report:     plan.Report,
		Warnings:   plan.Warnings,
	}
	g.logger.Info("Collage written", "path", result.OutputPath, "pages", result.Pages,
		"images", result.Images, "took", result.Duration.Round(time.Millisecond))
	return result, nil
}

// Stream renders a planned collage as a PDF directly to w.
func (g *Generator) Stream(ctx context.Context, plan *Plan, title string, w io.Writer) (int64, error) {
	sink := pdfSink(plan.Grid.PageWidth, plan.Grid.PageHeight, title)
	if err := g.Render(ctx, plan, sink, nil); err != nil {
		return 0, err
	}
	return sink.WriteTo(w)
}

// PDFSink creates a PDF sink sized for layout.
func PDFSink(layout config.LayoutConfig, title string) *pdfsink.Sink {
	return pdfSink(layout.PageWidthMM, layout.PageHeightMM, title)
}

func pdfSink(width, height float64, title string) *pdfsink.Sink {
	opts := []pdfsink.Option{pdfsink.WithPageSize(width, height)}
	if title != "" {
		opts = append(opts, pdfsink.WithTitle(title))
	}
	return pdfsink.New(opts...)
}

func notify(fn func(ProgressInfo), info ProgressInfo) {
	if fn != nil {
		fn(info)
	}
}
