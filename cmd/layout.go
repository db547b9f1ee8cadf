package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-collage/internal/collage"
	"github.com/kozaktomas/photo-collage/internal/generator"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [input-dir]",
	Short: "Print where every image would be placed",
	Long: `Compute the collage layout without writing a PDF and print the page,
cell and rendered box (in millimeters) of every image.

Examples:
  photo-collage layout ./receipts
  photo-collage layout ./receipts --cols 3 --rows 3 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().Bool("json", false, "Output as JSON")
	addLayoutFlags(layoutCmd)
}

type layoutOutput struct {
	Grid       collage.Grid          `json:"grid"`
	Pages      int                   `json:"pages"`
	Placements []collage.Placement   `json:"placements"`
	Report     *collage.ExportReport `json:"report"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := resolveLayout(cmd, cfg)
	if err != nil {
		return err
	}
	dir := inputDir(args, cfg)

	plan, err := generator.New(loggerFromContext(cmd.Context())).Plan(dir, layout)
	if err != nil {
		return explain(err, dir)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layoutOutput{
			Grid:       plan.Grid,
			Pages:      plan.Pages(),
			Placements: plan.Placements,
			Report:     plan.Report,
		})
	}

	cellW, cellH := plan.Grid.CellSize()
	fmt.Printf("%d images, %d page(s), grid %dx%d, cell %.2f x %.2f mm\n\n",
		len(plan.Placements), plan.Pages(), plan.Grid.Cols, plan.Grid.Rows, cellW, cellH)
	fmt.Printf("%-4s %-4s %-32s %8s %8s %8s %8s %7s\n", "PAGE", "SLOT", "IMAGE", "X", "Y", "W", "H", "DPI")
	for _, p := range plan.Placements {
		fmt.Printf("%-4d %-4d %-32s %8.2f %8.2f %8.2f %8.2f %7.0f\n",
			p.Page+1, p.Slot, truncate(p.Image.ID, 32), p.X, p.Y, p.W, p.H,
			collage.EffectiveDPI(p.Image.Width, p.W))
	}
	printReportWarnings(plan.Report)
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
