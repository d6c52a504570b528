package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgracey/lattice/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Displays row counts for the main tables.

Examples:
  lattice stats
  lattice stats --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(stats)
		}

		fmt.Println(ui.Header("Knowledge Base"))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Objects:       "), ui.Accent.Render(fmt.Sprintf("%d", stats.Objects)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Classes:       "), ui.Accent.Render(fmt.Sprintf("%d", stats.Classes)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Properties:    "), ui.Accent.Render(fmt.Sprintf("%d", stats.Properties)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Links:         "), ui.Accent.Render(fmt.Sprintf("%d", stats.Links)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Dangling links:"), ui.Accent.Render(fmt.Sprintf("%d", stats.DanglingLinks)))
		fmt.Printf("%s  %s\n", ui.Muted.Render("Files:         "), ui.Accent.Render(fmt.Sprintf("%d", stats.Files)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
