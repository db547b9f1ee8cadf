// Package preview rasterizes collage pages to PNG so a layout can be checked
// without opening the PDF.
package preview

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/constants"
)

// AllPages renders every page instead of a single one.
const AllPages = -1

var (
	pageColor    = color.RGBA{255, 255, 255, 255}
	outlineColor = color.RGBA{255, 0, 128, 255}
)

// Option configures the preview sink.
type Option func(*Sink)

// WithResolution sets the raster resolution in pixels per millimeter.
func WithResolution(pxPerMM float64) Option {
	return func(s *Sink) { s.pxPerMM = pxPerMM }
}

// WithPageSize sets the page size in millimeters.
func WithPageSize(width, height float64) Option {
	return func(s *Sink) {
		s.pageWidth = width
		s.pageHeight = height
	}
}

// WithPage selects the 0-based page to render, or AllPages.
func WithPage(page int) Option {
	return func(s *Sink) { s.page = page }
}

// WithCellOutlines draws the outline of every used cell.
func WithCellOutlines() Option {
	return func(s *Sink) { s.outlines = true }
}

// Sink implements collage.Sink by drawing pages into RGBA canvases.
type Sink struct {
	pxPerMM    float64
	pageWidth  float64
	pageHeight float64
	page       int
	outlines   bool

	current int // index of the page being placed, -1 before the first page
	pages   map[int]*image.RGBA
}

var _ collage.Sink = (*Sink)(nil)

// New creates a preview sink. By default it renders only the first page.
func New(opts ...Option) *Sink {
	s := &Sink{
		pxPerMM:    constants.DefaultPreviewPxPerMM,
		pageWidth:  constants.PageWidthMM,
		pageHeight: constants.PageHeightMM,
		page:       0,
		current:    -1,
		pages:      make(map[int]*image.RGBA),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) wanted(page int) bool {
	return s.page == AllPages || s.page == page
}

// px converts millimeters to pixels.
func (s *Sink) px(mm float64) int {
	return int(math.Round(mm * s.pxPerMM))
}

// StartPage begins a new page; pages that are not rendered are only counted.
func (s *Sink) StartPage() error {
	s.current++
	if !s.wanted(s.current) {
		return nil
	}
	if s.pxPerMM <= 0 {
		return fmt.Errorf("%w: preview resolution must be positive", collage.ErrSinkFailure)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, s.px(s.pageWidth), s.px(s.pageHeight)))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(pageColor), image.Point{}, draw.Src)
	s.pages[s.current] = canvas
	return nil
}

// PlaceImage decodes the image and scales it into its rendered box.
func (s *Sink) PlaceImage(p collage.Placement) error {
	if s.current < 0 {
		return fmt.Errorf("%w: image %q placed before the first page", collage.ErrSinkFailure, p.Image.ID)
	}
	canvas, ok := s.pages[s.current]
	if !ok {
		return nil
	}

	src, err := decode(p.Image.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", collage.ErrSinkFailure, p.Image.ID, err)
	}

	dst := image.Rect(s.px(p.X), s.px(p.Y), s.px(p.X+p.W), s.px(p.Y+p.H))
	draw.CatmullRom.Scale(canvas, dst, src, src.Bounds(), draw.Over, nil)

	if s.outlines {
		cell := image.Rect(s.px(p.Cell.X), s.px(p.Cell.Y), s.px(p.Cell.X+p.Cell.W), s.px(p.Cell.Y+p.Cell.H))
		drawOutline(canvas, cell, outlineColor)
	}
	return nil
}

// Page returns the rendered canvas of a page, if it was rendered.
func (s *Sink) Page(page int) (*image.RGBA, bool) {
	img, ok := s.pages[page]
	return img, ok
}

// Finalize writes the rendered page to outputPath. When all pages are
// rendered, page n is written as <name>-<n>.png next to outputPath.
func (s *Sink) Finalize(outputPath string) error {
	if s.page != AllPages {
		canvas, ok := s.pages[s.page]
		if !ok {
			return fmt.Errorf("%w: page %d does not exist (collage has %d pages)",
				collage.ErrSinkFailure, s.page+1, s.current+1)
		}
		return writePNG(outputPath, canvas)
	}

	for page := 0; page <= s.current; page++ {
		if err := writePNG(PagePath(outputPath, page), s.pages[page]); err != nil {
			return err
		}
	}
	return nil
}

// PagePath returns the file name used for a page when rendering all pages.
func PagePath(outputPath string, page int) string {
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%d%s", base, page+1, ext)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the image source
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // output path chosen by the user
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", collage.ErrSinkFailure, path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("%w: encode %s: %w", collage.ErrSinkFailure, path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: write %s: %w", collage.ErrSinkFailure, path, err)
	}
	return nil
}

// drawOutline draws a 1px rectangle border.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
