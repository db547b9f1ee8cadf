package collage

import (
	"fmt"
	"path/filepath"
)

// Image is a source image with its intrinsic pixel size.
type Image struct {
	ID     string `json:"id"`   // file name, used for ordering and reporting
	Path   string `json:"path"` // location the sink reads the image from
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"` // decoder name, e.g. "jpeg" or "png"; empty if unknown
}

// Ext returns the file extension of the image path, falling back to the ID.
func (i Image) Ext() string {
	if i.Path != "" {
		return filepath.Ext(i.Path)
	}
	return filepath.Ext(i.ID)
}

// Placement is where one image lands: page, cell and the rendered box.
type Placement struct {
	Page  int   `json:"page"`  // 0-based page index
	Slot  int   `json:"slot"`  // 0-based cell index within the page
	Index int   `json:"index"` // position of the image in the input sequence
	Image Image `json:"image"`
	Cell  Rect  `json:"cell"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect returns the rendered box of the placement.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// Layout computes one placement per image, in input order.
// Images are batched into pages of grid.Capacity() cells; each image is
// scaled to fit its cell and centered in it.
func Layout(images []Image, grid Grid) ([]Placement, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	pages, err := Partition(images, grid.Capacity())
	if err != nil {
		return nil, err
	}

	cellW, cellH := grid.CellSize()
	placements := make([]Placement, 0, len(images))
	index := 0
	for page, batch := range pages {
		for slot, img := range batch {
			w, h, err := Fit(img.Width, img.Height, cellW, cellH)
			if err != nil {
				return nil, fmt.Errorf("image %q: %w", img.ID, err)
			}
			cell := grid.CellRect(slot)
			x, y := Center(cell, w, h)
			placements = append(placements, Placement{
				Page:  page,
				Slot:  slot,
				Index: index,
				Image: img,
				Cell:  cell,
				X:     x,
				Y:     y,
				W:     w,
				H:     h,
			})
			index++
		}
	}
	return placements, nil
}
