// Package pdfsink writes collage placements into a PDF document.
package pdfsink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/constants"
)

var errAlreadyWritten = errors.New("document already written")

// Option configures the PDF sink.
type Option func(*Sink)

// WithPageSize sets the page size in millimeters (default A4 portrait).
func WithPageSize(width, height float64) Option {
	return func(s *Sink) {
		s.pageWidth = width
		s.pageHeight = height
	}
}

// WithTitle sets the document title metadata.
func WithTitle(title string) Option {
	return func(s *Sink) { s.title = title }
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) Option {
	return func(s *Sink) { s.author = author }
}

// Sink implements collage.Sink on top of fpdf.
// A Sink produces exactly one document: either Finalize or WriteTo.
type Sink struct {
	pdf        *fpdf.Fpdf
	pageWidth  float64
	pageHeight float64
	title      string
	author     string
	pages      int
	images     int
	written    bool
}

var _ collage.Sink = (*Sink)(nil)

// New creates a PDF sink with millimeter units and no automatic page breaks.
func New(opts ...Option) *Sink {
	s := &Sink{
		pageWidth:  constants.PageWidthMM,
		pageHeight: constants.PageHeightMM,
	}
	for _, opt := range opts {
		opt(s)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: s.pageWidth, Ht: s.pageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)
	pdf.SetCreator("photo-collage", true)
	if s.title != "" {
		pdf.SetTitle(s.title, true)
	}
	if s.author != "" {
		pdf.SetAuthor(s.author, true)
	}
	s.pdf = pdf
	return s
}

// Pages returns the number of pages started so far.
func (s *Sink) Pages() int { return s.pages }

// Images returns the number of images placed so far.
func (s *Sink) Images() int { return s.images }

// StartPage begins a new page.
func (s *Sink) StartPage() error {
	if s.written {
		return fmt.Errorf("%w: %w", collage.ErrSinkFailure, errAlreadyWritten)
	}
	s.pdf.AddPage()
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("%w: add page: %w", collage.ErrSinkFailure, err)
	}
	s.pages++
	return nil
}

// PlaceImage draws the image file at the placement's rendered box.
// Each file is embedded once, even if placed several times.
func (s *Sink) PlaceImage(p collage.Placement) error {
	if s.written {
		return fmt.Errorf("%w: %w", collage.ErrSinkFailure, errAlreadyWritten)
	}
	if s.pages == 0 {
		return fmt.Errorf("%w: image %q placed before the first page", collage.ErrSinkFailure, p.Image.ID)
	}

	opts := fpdf.ImageOptions{ImageType: imageType(p.Image)}
	if s.pdf.GetImageInfo(p.Image.Path) == nil {
		s.pdf.RegisterImageOptions(p.Image.Path, opts)
	}
	s.pdf.ImageOptions(p.Image.Path, p.X, p.Y, p.W, p.H, false, opts, 0, "")
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", collage.ErrSinkFailure, p.Image.ID, err)
	}
	s.images++
	return nil
}

// WriteTo streams the finished document to w.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	if s.written {
		return 0, fmt.Errorf("%w: %w", collage.ErrSinkFailure, errAlreadyWritten)
	}
	s.written = true

	cw := &countingWriter{w: w}
	if err := s.pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("%w: %w", collage.ErrSinkFailure, err)
	}
	return cw.n, nil
}

// Finalize writes the document to outputPath. The file is first written to
// a temporary sibling and renamed into place, so a failed run never leaves a
// partial PDF at outputPath.
func (s *Sink) Finalize(outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmpPath := filepath.Join(dir, "."+filepath.Base(outputPath)+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644) //nolint:gosec // output path chosen by the user
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", collage.ErrSinkFailure, outputPath, err)
	}

	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %w", collage.ErrSinkFailure, outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename to %s: %w", collage.ErrSinkFailure, outputPath, err)
	}
	return nil
}

// imageType returns the fpdf image type name for img. The format sniffed from
// the file contents wins over the extension, which may lie.
func imageType(img collage.Image) string {
	switch strings.ToLower(img.Format) {
	case "jpeg":
		return "JPG"
	case "png":
		return "PNG"
	}
	switch strings.ToLower(img.Ext()) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".png":
		return "PNG"
	default:
		return ""
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
