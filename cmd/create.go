package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/generator"
)

var createCmd = &cobra.Command{
	Use:   "create [input-dir]",
	Short: "Create a PDF collage from a folder of images",
	Long: `Create a PDF collage from every .jpg, .jpeg and .png file in a folder.
Images are sorted by file name and placed row by row, left to right,
filling as many pages as needed.

Examples:
  # Default folder and output, 2x3 grid on A4
  photo-collage create

  # Custom folder, 3x4 grid with smaller spacing
  photo-collage create ./receipts -o receipts.pdf --cols 3 --rows 4 --margin 8 --gap 3

  # Use a preset and write a quality report
  photo-collage create ./scans --preset contact-sheet --report report.json

  # Only show what would be generated
  photo-collage create ./scans --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringP("output", "o", "", "Output PDF path (default from COLLAGE_OUTPUT)")
	createCmd.Flags().String("title", "", "PDF title metadata")
	createCmd.Flags().String("report", "", "Write a JSON quality report to this path")
	createCmd.Flags().Bool("dry-run", false, "Compute the layout without writing a PDF")
	createCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	addLayoutFlags(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
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
	if output == "" {
		output = cfg.Output
	}
	title := mustGetString(cmd, "title")
	if title == "" {
		title = cfg.Title
	}
	reportPath := mustGetString(cmd, "report")
	dryRun := mustGetBool(cmd, "dry-run")
	noProgress := mustGetBool(cmd, "no-progress")

	gen := generator.New(loggerFromContext(cmd.Context()))

	if dryRun {
		plan, err := gen.Plan(dir, layout)
		if err != nil {
			return explain(err, dir)
		}
		cellW, cellH := plan.Grid.CellSize()
		fmt.Printf("Dry run: %d images from %s\n", len(plan.Images), dir)
		fmt.Printf("Grid: %dx%d, cell %.2f x %.2f mm\n", layout.Cols, layout.Rows, cellW, cellH)
		fmt.Printf("Would write %d page(s) to %s\n", plan.Pages(), output)
		printReportWarnings(plan.Report)
		return writeReport(reportPath, plan.Report)
	}

	var bar *progressbar.ProgressBar
	opts := generator.Options{
		InputDir:   dir,
		OutputPath: output,
		Layout:     layout,
		Title:      title,
	}
	if !noProgress {
		opts.OnProgress = func(info generator.ProgressInfo) {
			if info.Phase != generator.PhasePlacing {
				return
			}
			if bar == nil {
				bar = progressbar.NewOptions(info.Total,
					progressbar.OptionSetDescription("Placing images"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("images"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}
			bar.Set(info.Current)
		}
	}

	result, err := gen.Generate(cmd.Context(), opts, nil)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return explain(err, dir)
	}

	fmt.Printf("Created %s\n", result.OutputPath)
	fmt.Printf("  Images: %d\n", result.Images)
	fmt.Printf("  Pages:  %d\n", result.Pages)
	printReportWarnings(result.Report)

	return writeReport(reportPath, result.Report)
}

func printReportWarnings(report *collage.ExportReport) {
	if report == nil || len(report.Warnings) == 0 {
		return
	}
	fmt.Printf("\nWarnings (%d):\n", len(report.Warnings))
	for _, w := range report.Warnings {
		fmt.Printf("  - %s\n", w)
	}
}

func writeReport(path string, report *collage.ExportReport) error {
	if path == "" || report == nil {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // report is not sensitive
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}
