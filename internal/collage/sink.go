package collage

import (
	"context"
	"errors"
	"fmt"
)

// Sink consumes placements and produces an output document.
// StartPage is called once per page, in order, before that page's images.
type Sink interface {
	StartPage() error
	PlaceImage(p Placement) error
	Finalize(outputPath string) error
}

// Apply drives sink with placements computed by Layout.
// onPlaced, if not nil, is called after every placed image.
// Finalize is left to the caller so the same sink can also be streamed.
func Apply(ctx context.Context, placements []Placement, sink Sink, onPlaced func(done, total int)) error {
	page := -1
	for i, p := range placements {
		if err := ctx.Err(); err != nil {
			return err
		}
		for page < p.Page {
			page++
			if err := sink.StartPage(); err != nil {
				return sinkError(err, "starting page %d", page+1)
			}
		}
		if err := sink.PlaceImage(p); err != nil {
			return sinkError(err, "placing %q on page %d", p.Image.ID, p.Page+1)
		}
		if onPlaced != nil {
			onPlaced(i+1, len(placements))
		}
	}
	return nil
}

// sinkError adds context to err and marks it as ErrSinkFailure unless the
// sink already did.
func sinkError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, ErrSinkFailure) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSinkFailure, msg, err)
}
