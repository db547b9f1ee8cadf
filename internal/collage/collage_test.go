package collage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"
)

const eps = 0.0001

func a4Grid(cols, rows int, margin, gap float64) Grid {
	return Grid{PageWidth: 210, PageHeight: 297, Margin: margin, Gap: gap, Cols: cols, Rows: rows}
}

func testImages(n int, width, height int) []Image {
	images := make([]Image, n)
	for i := range n {
		id := fmt.Sprintf("img_%02d.jpg", i)
		images[i] = Image{ID: id, Path: "/photos/" + id, Width: width, Height: height}
	}
	return images
}

// --- Partition ---

func TestPartition_Completeness(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for capacity := 1; capacity <= 7; capacity++ {
			items := make([]int, n)
			for i := range items {
				items[i] = i
			}
			pages, err := Partition(items, capacity)
			if err != nil {
				t.Fatalf("n=%d cap=%d: unexpected error: %v", n, capacity, err)
			}
			if len(pages) != PageCount(n, capacity) {
				t.Errorf("n=%d cap=%d: expected %d pages, got %d", n, capacity, PageCount(n, capacity), len(pages))
			}
			var flat []int
			for i, p := range pages {
				if i < len(pages)-1 && len(p) != capacity {
					t.Errorf("n=%d cap=%d: page %d has %d items, want %d", n, capacity, i, len(p), capacity)
				}
				if len(p) == 0 || len(p) > capacity {
					t.Errorf("n=%d cap=%d: page %d has invalid size %d", n, capacity, i, len(p))
				}
				flat = append(flat, p...)
			}
			if n > 0 && !slices.Equal(flat, items) {
				t.Errorf("n=%d cap=%d: concatenation %v does not match input %v", n, capacity, flat, items)
			}
		}
	}
}

func TestPartition_LastPage(t *testing.T) {
	pages, err := Partition([]string{"a", "b", "c", "d", "e", "f", "g"}, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0]) != 6 || len(pages[1]) != 1 {
		t.Errorf("expected page sizes [6 1], got [%d %d]", len(pages[0]), len(pages[1]))
	}
	if pages[1][0] != "g" {
		t.Errorf("expected last page to hold g, got %s", pages[1][0])
	}
}

func TestPartition_ExactMultiple(t *testing.T) {
	pages, err := Partition([]int{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 || len(pages[1]) != 2 {
		t.Errorf("expected two full pages, got %v", pages)
	}
}

func TestPartition_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			_, err := Partition([]int{1}, capacity)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestPartition_DoesNotAliasAcrossPages(t *testing.T) {
	items := []int{1, 2, 3, 4}
	pages, _ := Partition(items, 2)
	pages[0] = append(pages[0], 99)
	if items[2] != 3 {
		t.Errorf("appending to a page must not overwrite the next page, got %v", items)
	}
}

// --- Grid ---

func TestCellSize_A4TwoByThree(t *testing.T) {
	g := a4Grid(2, 3, 10, 5)
	w, h := g.CellSize()
	// (210 - 20 - 5) / 2 = 92.5
	if math.Abs(w-92.5) > eps {
		t.Errorf("cell width: expected 92.5, got %.4f", w)
	}
	// (297 - 20 - 10) / 3 = 89
	if math.Abs(h-89) > eps {
		t.Errorf("cell height: expected 89, got %.4f", h)
	}
}

func TestCellOrigin(t *testing.T) {
	g := a4Grid(2, 3, 10, 5)
	tests := []struct {
		idx  int
		x, y float64
	}{
		{0, 10, 10},
		{1, 10 + 92.5 + 5, 10},
		{2, 10, 10 + 89 + 5},
		{3, 107.5, 104},
		{5, 107.5, 10 + 2*(89+5)},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.idx), func(t *testing.T) {
			x, y := g.CellOrigin(tt.idx)
			if math.Abs(x-tt.x) > eps || math.Abs(y-tt.y) > eps {
				t.Errorf("cell %d: expected (%.2f, %.2f), got (%.2f, %.2f)", tt.idx, tt.x, tt.y, x, y)
			}
		})
	}
}

func TestCellsWithinMargins(t *testing.T) {
	for cols := 1; cols <= 10; cols++ {
		for rows := 1; rows <= 10; rows++ {
			g := a4Grid(cols, rows, 10, 5)
			content := Rect{X: 10, Y: 10, W: 190, H: 277}
			for idx := range g.Capacity() {
				cell := g.CellRect(idx)
				if !content.Contains(cell, eps) {
					t.Fatalf("%dx%d cell %d (%+v) outside content area", cols, rows, idx, cell)
				}
			}
		}
	}
}

func TestGridValidate(t *testing.T) {
	tests := []struct {
		name    string
		grid    Grid
		wantErr bool
	}{
		{"default", a4Grid(2, 3, 10, 5), false},
		{"no margin no gap", a4Grid(10, 10, 0, 0), false},
		{"zero cols", a4Grid(0, 3, 10, 5), true},
		{"zero rows", a4Grid(2, 0, 10, 5), true},
		{"negative cols", a4Grid(-1, 3, 10, 5), true},
		{"negative margin", a4Grid(2, 3, -1, 5), true},
		{"negative gap", a4Grid(2, 3, 10, -0.5), true},
		{"margin eats page", a4Grid(1, 1, 105, 0), true},
		{"gaps eat page", a4Grid(10, 1, 0, 25), true},
		{"zero page", Grid{Cols: 1, Rows: 1}, true},
		{"nan margin", a4Grid(2, 3, math.NaN(), 5), true},
		{"inf gap", a4Grid(2, 3, 10, math.Inf(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Errorf("expected ErrInvalidConfiguration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ n, capacity, want int }{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{12, 6, 2},
		{13, 6, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.n, tt.capacity); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d; want %d", tt.n, tt.capacity, got, tt.want)
		}
	}
}

// --- Fit ---

func TestFit_WideImage(t *testing.T) {
	w, h, err := Fit(800, 600, 92.5, 89)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(w-92.5) > eps || math.Abs(h-69.375) > eps {
		t.Errorf("expected 92.5x69.375, got %.4fx%.4f", w, h)
	}

	x, y := Center(Rect{X: 10, Y: 10, W: 92.5, H: 89}, w, h)
	if math.Abs(x-10) > eps {
		t.Errorf("expected x=10, got %.4f", x)
	}
	if math.Abs(y-(10+(89-69.375)/2)) > eps {
		t.Errorf("expected vertically centered y, got %.4f", y)
	}
}

func TestFit_TallImage(t *testing.T) {
	w, h, err := Fit(600, 1200, 92.5, 89)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(h-89) > eps || math.Abs(w-44.5) > eps {
		t.Errorf("expected 44.5x89, got %.4fx%.4f", w, h)
	}
}

func TestFit_SameAspectFillsCell(t *testing.T) {
	w, h, err := Fit(200, 100, 50, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(w-50) > eps || math.Abs(h-25) > eps {
		t.Errorf("expected 50x25, got %.4fx%.4f", w, h)
	}
}

func TestFit_InvalidImage(t *testing.T) {
	for _, size := range [][2]int{{0, 100}, {100, 0}, {0, 0}, {-5, 10}} {
		t.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(t *testing.T) {
			_, _, err := Fit(size[0], size[1], 50, 50)
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("expected ErrInvalidImage, got %v", err)
			}
		})
	}
}

func TestFit_InvalidCell(t *testing.T) {
	_, _, err := Fit(100, 100, 0, 50)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

// --- Layout ---

func TestLayout_SevenImagesOnTwoPages(t *testing.T) {
	images := testImages(7, 800, 600)
	placements, err := Layout(images, a4Grid(2, 3, 10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placements) != 7 {
		t.Fatalf("expected 7 placements, got %d", len(placements))
	}

	wantCols := []int{0, 1, 0, 1, 0, 1, 0}
	wantRows := []int{0, 0, 1, 1, 2, 2, 0}
	wantPages := []int{0, 0, 0, 0, 0, 0, 1}
	g := a4Grid(2, 3, 10, 5)
	for i, p := range placements {
		if p.Page != wantPages[i] {
			t.Errorf("image %d: expected page %d, got %d", i, wantPages[i], p.Page)
		}
		if p.Index != i || p.Image.ID != images[i].ID {
			t.Errorf("image %d: placement out of input order (%d, %s)", i, p.Index, p.Image.ID)
		}
		cx, cy := g.CellOrigin(wantRows[i]*2 + wantCols[i])
		if math.Abs(p.Cell.X-cx) > eps || math.Abs(p.Cell.Y-cy) > eps {
			t.Errorf("image %d: expected cell at col %d row %d (%.2f, %.2f), got (%.2f, %.2f)",
				i, wantCols[i], wantRows[i], cx, cy, p.Cell.X, p.Cell.Y)
		}
	}
	if placements[6].Slot != 0 {
		t.Errorf("expected image 6 in slot 0 of page 1, got slot %d", placements[6].Slot)
	}
}

func TestLayout_PlacementsStayInCells(t *testing.T) {
	sizes := [][2]int{{800, 600}, {600, 800}, {1000, 1000}, {4000, 300}, {300, 4000}, {1, 1}, {1920, 1080}}
	grids := []Grid{
		a4Grid(2, 3, 10, 5),
		a4Grid(1, 1, 0, 0),
		a4Grid(10, 10, 50, 0),
		a4Grid(3, 7, 0, 12.5),
		{PageWidth: 297, PageHeight: 210, Margin: 7, Gap: 3, Cols: 4, Rows: 2},
	}

	for gi, g := range grids {
		for n := 1; n <= 23; n += 3 {
			images := make([]Image, n)
			for i := range n {
				s := sizes[i%len(sizes)]
				images[i] = Image{ID: fmt.Sprintf("%03d.png", i), Width: s[0], Height: s[1]}
			}
			placements, err := Layout(images, g)
			if err != nil {
				t.Fatalf("grid %d n=%d: unexpected error: %v", gi, n, err)
			}
			if len(placements) != n {
				t.Fatalf("grid %d n=%d: expected %d placements, got %d", gi, n, n, len(placements))
			}
			prevPage := 0
			for i, p := range placements {
				if p.Page < prevPage {
					t.Errorf("grid %d n=%d: page index decreased at %d", gi, n, i)
				}
				prevPage = p.Page
				if !p.Cell.Contains(p.Rect(), 1e-9) {
					t.Errorf("grid %d n=%d: placement %d overflows cell: %+v in %+v", gi, n, i, p.Rect(), p.Cell)
				}
				want := float64(p.Image.Width) / float64(p.Image.Height)
				if math.Abs(p.W/p.H-want) > 1e-9*math.Max(1, want) {
					t.Errorf("grid %d n=%d: placement %d aspect %.9f, want %.9f", gi, n, i, p.W/p.H, want)
				}
			}
			if w := Validate(placements, g); len(w) != 0 {
				t.Errorf("grid %d n=%d: unexpected validation warnings: %v", gi, n, w)
			}
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	images := testImages(13, 1234, 987)
	g := a4Grid(3, 4, 7.5, 2.25)
	first, err := Layout(images, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Layout(images, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(first, second) {
		t.Error("expected bit-identical placements for identical input")
	}
}

func TestLayout_NoImages(t *testing.T) {
	_, err := Layout(nil, a4Grid(2, 3, 10, 5))
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("expected ErrNoImages, got %v", err)
	}
}

func TestLayout_ZeroCols(t *testing.T) {
	_, err := Layout(testImages(3, 10, 10), a4Grid(0, 3, 10, 5))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLayout_InvalidImage(t *testing.T) {
	images := testImages(3, 100, 100)
	images[1].Height = 0
	_, err := Layout(images, a4Grid(2, 3, 10, 5))
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

// --- Apply ---

type recordingSink struct {
	events  []string
	failOn  string
	failErr error
}

func (r *recordingSink) StartPage() error {
	r.events = append(r.events, "page")
	return nil
}

func (r *recordingSink) PlaceImage(p Placement) error {
	if p.Image.ID == r.failOn {
		if r.failErr != nil {
			return r.failErr
		}
		return errors.New("write failed")
	}
	r.events = append(r.events, p.Image.ID)
	return nil
}

func (r *recordingSink) Finalize(string) error { return nil }

func TestApply_StartsPagesInOrder(t *testing.T) {
	placements, err := Layout(testImages(3, 100, 100), a4Grid(1, 2, 10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink := &recordingSink{}
	var done []int
	err = Apply(context.Background(), placements, sink, func(n, total int) {
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		done = append(done, n)
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []string{"page", "img_00.jpg", "img_01.jpg", "page", "img_02.jpg"}
	if !slices.Equal(sink.events, want) {
		t.Errorf("expected events %v, got %v", want, sink.events)
	}
	if !slices.Equal(done, []int{1, 2, 3}) {
		t.Errorf("expected progress 1..3, got %v", done)
	}
}

func TestApply_WrapsSinkErrors(t *testing.T) {
	placements, _ := Layout(testImages(3, 100, 100), a4Grid(2, 2, 10, 5))
	err := Apply(context.Background(), placements, &recordingSink{failOn: "img_01.jpg"}, nil)
	if !errors.Is(err, ErrSinkFailure) {
		t.Errorf("expected ErrSinkFailure, got %v", err)
	}
}

func TestApply_DoesNotRewrapSinkFailure(t *testing.T) {
	placements, _ := Layout(testImages(2, 100, 100), a4Grid(2, 2, 10, 5))
	sinkErr := fmt.Errorf("%w: img_00.jpg: not a PNG buffer", ErrSinkFailure)
	err := Apply(context.Background(), placements, &recordingSink{failOn: "img_00.jpg", failErr: sinkErr}, nil)
	if !errors.Is(err, ErrSinkFailure) {
		t.Fatalf("expected ErrSinkFailure, got %v", err)
	}
	if n := strings.Count(err.Error(), ErrSinkFailure.Error()); n != 1 {
		t.Errorf("expected %q once in %q, got %d", ErrSinkFailure, err, n)
	}
	if !strings.Contains(err.Error(), `placing "img_00.jpg" on page 1`) {
		t.Errorf("expected placement context in %q", err)
	}
}

func TestApply_Cancelled(t *testing.T) {
	placements, _ := Layout(testImages(2, 100, 100), a4Grid(2, 2, 10, 5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	if err := Apply(ctx, placements, sink, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(sink.events) != 0 {
		t.Errorf("expected no sink calls after cancellation, got %v", sink.events)
	}
}

// --- Validate ---

func TestValidate_DetectsOverflow(t *testing.T) {
	g := a4Grid(2, 3, 10, 5)
	placements, err := Layout(testImages(2, 800, 600), g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	placements[1].W += 10
	warnings := Validate(placements, g)
	if !HasErrors(warnings) {
		t.Fatal("expected an error-severity warning for an overflowing box")
	}
	if warnings[0].Slot != 1 {
		t.Errorf("expected warning for slot 1, got %d", warnings[0].Slot)
	}
}

func TestValidate_DetectsAspectDrift(t *testing.T) {
	g := a4Grid(2, 3, 10, 5)
	placements, _ := Layout(testImages(1, 800, 600), g)
	placements[0].H -= 5
	warnings := Validate(placements, g)
	if len(warnings) != 1 || warnings[0].Severity != SeverityWarning {
		t.Errorf("expected one aspect warning, got %v", warnings)
	}
	if HasErrors(warnings) {
		t.Error("aspect drift alone should not be an error")
	}
}

// --- Report ---

func TestEffectiveDPI(t *testing.T) {
	// 2480 px across 210 mm is the classic A4 @ 300 DPI.
	if got := EffectiveDPI(2480, 210); math.Abs(got-300) > 0.1 {
		t.Errorf("expected ~300 DPI, got %.1f", got)
	}
	if got := EffectiveDPI(100, 0); got != 0 {
		t.Errorf("expected 0 for zero width, got %.1f", got)
	}
}

func TestBuildReport(t *testing.T) {
	g := a4Grid(2, 3, 10, 5)
	images := testImages(7, 800, 600)
	images[0].Width, images[0].Height = 4000, 3000
	placements, err := Layout(images, g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := BuildReport(placements, g, 200)
	if report.PageCount != 2 || report.ImageCount != 7 {
		t.Errorf("expected 2 pages / 7 images, got %d / %d", report.PageCount, report.ImageCount)
	}
	if len(report.Pages[0].Images) != 6 || len(report.Pages[1].Images) != 1 {
		t.Errorf("unexpected per-page counts: %d, %d", len(report.Pages[0].Images), len(report.Pages[1].Images))
	}
	if report.Pages[1].PageNumber != 2 {
		t.Errorf("expected 1-based page numbers, got %d", report.Pages[1].PageNumber)
	}
	// 4000 px over 92.5 mm is ~1098 DPI; 800 px is ~220 DPI.
	if report.Pages[0].Images[0].LowRes {
		t.Error("large image should not be flagged low-res")
	}
	if report.Pages[0].Images[1].LowRes {
		t.Errorf("800px image at %.1f DPI should not be flagged", report.Pages[0].Images[1].EffectiveDPI)
	}

	strict := BuildReport(placements, g, 500)
	if len(strict.Warnings) != 6 {
		t.Errorf("expected 6 low-res warnings at 500 DPI, got %d", len(strict.Warnings))
	}

	off := BuildReport(placements, g, 0)
	if len(off.Warnings) != 0 {
		t.Errorf("expected no warnings with the check disabled, got %v", off.Warnings)
	}
}
