// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Page constants (A4 portrait, millimeters)
const (
	// PageWidthMM is the default page width
	PageWidthMM = 210.0

	// PageHeightMM is the default page height
	PageHeightMM = 297.0
)

// Grid defaults, matching the layout users get without any flags
const (
	DefaultCols     = 2
	DefaultRows     = 3
	DefaultMarginMM = 10.0
	DefaultGapMM    = 5.0
)

// Bounds offered by the CLI and web front-ends. The layout engine itself only
// rejects non-positive grids and negative spacing.
const (
	MinGridCells = 1
	MaxGridCells = 10

	MinSpacingMM = 0.0
	MaxSpacingMM = 50.0
)

// Default input and output locations
const (
	DefaultInputDir   = "file_gambar"
	DefaultOutputFile = "rekap_bukti_transfer_kolase.pdf"
)

// Quality constants
const (
	// LowResDPIThreshold flags images printed below this effective resolution
	LowResDPIThreshold = 200.0
)

// Preview constants
const (
	// DefaultPreviewPxPerMM gives a ~100 DPI raster preview
	DefaultPreviewPxPerMM = 4.0
)

// Web constants
const (
	DefaultWebPort = 8080
	DefaultWebHost = "0.0.0.0"

	// MaxRequestBodySize limits JSON request bodies (1MB)
	MaxRequestBodySize = 1 << 20

	// RequestTimeout bounds a single layout or render request
	RequestTimeout = 2 * time.Minute

	// ShutdownTimeout is how long in-flight requests get on shutdown
	ShutdownTimeout = 30 * time.Second
)
