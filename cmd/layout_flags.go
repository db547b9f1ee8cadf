package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/config"
	"github.com/kozaktomas/photo-collage/internal/constants"
)

// addLayoutFlags registers the grid flags shared by create, layout and preview.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Int("cols", constants.DefaultCols, fmt.Sprintf("Number of columns (%d-%d)", constants.MinGridCells, constants.MaxGridCells))
	cmd.Flags().Int("rows", constants.DefaultRows, fmt.Sprintf("Number of rows (%d-%d)", constants.MinGridCells, constants.MaxGridCells))
	cmd.Flags().Float64("margin", constants.DefaultMarginMM, "Page margin in mm")
	cmd.Flags().Float64("gap", constants.DefaultGapMM, "Gap between cells in mm")
	cmd.Flags().String("preset", "", "Named layout preset (see 'photo-collage presets')")
}

// resolveLayout builds the layout from config, then the preset, then flags
// the user set explicitly. Later sources win.
func resolveLayout(cmd *cobra.Command, cfg *config.Config) (config.LayoutConfig, error) {
	layout := cfg.Layout

	if name := mustGetString(cmd, "preset"); name != "" {
		preset, ok := cfg.GetPreset(name)
		if !ok {
			return layout, fmt.Errorf("%w: unknown preset %q (available: %s)",
				collage.ErrInvalidConfiguration, name, strings.Join(cfg.PresetNames(), ", "))
		}
		layout.ApplyPreset(preset)
	}

	if cmd.Flags().Changed("cols") {
		layout.Cols = mustGetInt(cmd, "cols")
	}
	if cmd.Flags().Changed("rows") {
		layout.Rows = mustGetInt(cmd, "rows")
	}
	if cmd.Flags().Changed("margin") {
		layout.MarginMM = mustGetFloat64(cmd, "margin")
	}
	if cmd.Flags().Changed("gap") {
		layout.GapMM = mustGetFloat64(cmd, "gap")
	}

	if err := layout.CheckBounds(); err != nil {
		return layout, err
	}
	return layout, nil
}

// inputDir returns the positional input directory or the configured default.
func inputDir(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Input
}

// explain adds a hint for the user to known collage errors.
func explain(err error, dir string) error {
	switch {
	case errors.Is(err, collage.ErrDirectoryNotFound):
		return fmt.Errorf("input folder %q does not exist, create it and put your .jpg/.png files inside: %w", dir, err)
	case errors.Is(err, collage.ErrNoImages):
		return fmt.Errorf("no .jpg, .jpeg or .png files in %q: %w", dir, err)
	case errors.Is(err, collage.ErrInvalidImage):
		return fmt.Errorf("an image could not be read, remove or re-save it: %w", err)
	default:
		return err
	}
}
