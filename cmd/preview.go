package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-collage/internal/constants"
	"github.com/kozaktomas/photo-collage/internal/generator"
	"github.com/kozaktomas/photo-collage/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview [input-dir]",
	Short: "Render collage pages to PNG for a quick look",
	Long: `Render one or all collage pages to PNG images instead of a PDF.
Useful to check a layout before printing.

Examples:
  # First page at ~100 DPI
  photo-collage preview ./receipts -o preview.png

  # Every page with cell outlines (writes preview-1.png, preview-2.png, ...)
  photo-collage preview ./receipts --page 0 --outlines`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("output", "o", "preview.png", "Output PNG path")
	previewCmd.Flags().Int("page", 1, "Page to render, 1-based (0 = all pages)")
	previewCmd.Flags().Float64("resolution", constants.DefaultPreviewPxPerMM, "Pixels per millimeter")
	previewCmd.Flags().Bool("outlines", false, "Draw cell outlines")
	addLayoutFlags(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := resolveLayout(cmd, cfg)
	if err != nil {
		return err
	}
	dir := inputDir(args, cfg)

	output := mustGetString(cmd, "output")
	page := mustGetInt(cmd, "page")
	resolution := mustGetFloat64(cmd, "resolution")
	if page < 0 {
		return fmt.Errorf("--page must be 0 (all) or a page number, got %d", page)
	}
	if resolution <= 0 {
		return fmt.Errorf("--resolution must be positive, got %g", resolution)
	}

	opts := []preview.Option{
		preview.WithResolution(resolution),
		preview.WithPageSize(layout.PageWidthMM, layout.PageHeightMM),
		preview.WithPage(page - 1),
	}
	if page == 0 {
		opts[2] = preview.WithPage(preview.AllPages)
	}
	if mustGetBool(cmd, "outlines") {
		opts = append(opts, preview.WithCellOutlines())
	}

	result, err := generator.New(loggerFromContext(cmd.Context())).Generate(cmd.Context(), generator.Options{
		InputDir:   dir,
		OutputPath: output,
		Layout:     layout,
	}, preview.New(opts...))
	if err != nil {
		return explain(err, dir)
	}

	if page == 0 {
		for i := range result.Pages {
			fmt.Printf("Wrote %s\n", preview.PagePath(output, i))
		}
		return nil
	}
	fmt.Printf("Wrote %s (page %d of %d)\n", output, page, result.Pages)
	return nil
}
