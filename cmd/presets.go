package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in layout presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("%-16s %-6s %-8s %-6s %s\n", "NAME", "GRID", "MARGIN", "GAP", "DESCRIPTION")
		for _, name := range cfg.PresetNames() {
			p, _ := cfg.GetPreset(name)
			fmt.Printf("%-16s %-6s %-8s %-6s %s\n", name,
				fmt.Sprintf("%dx%d", p.Cols, p.Rows),
				fmt.Sprintf("%gmm", p.MarginMM),
				fmt.Sprintf("%gmm", p.GapMM),
				p.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
