package collage

import "errors"

// Error taxonomy shared by the layout engine, the image source and the sinks.
// Callers should match with errors.Is; messages are wrapped with context.
var (
	// ErrDirectoryNotFound is returned when the input directory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNoImages is returned when no qualifying image files were found.
	ErrNoImages = errors.New("no images found")

	// ErrInvalidConfiguration is returned for grid parameters that cannot produce a layout.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidImage is returned for images with zero dimensions or unreadable headers.
	ErrInvalidImage = errors.New("invalid image")

	// ErrSinkFailure is returned when an output sink fails to place or write.
	ErrSinkFailure = errors.New("sink failure")
)
