package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgracey/lattice/internal/ui"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search objects by title and content",
	Long: `Searches object titles and rich-text content. Title matches come
first, then full-text matches with highlighted snippets.

Examples:
  lattice search gardening
  lattice search "spring planting" --limit 5
  lattice search tomato --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		query := strings.Join(args, " ")
		results, err := st.Search(query, searchLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Println(ui.Muted.Render("no results"))
			return nil
		}

		snippetWidth := ui.Width() - 40
		tbl := ui.NewTable(3)
		for _, r := range results {
			where := "title"
			if r.PropertyID != 0 {
				where = r.PropTitle
			}
			tbl.AddRow(
				ui.Title(r.Object.Title),
				ui.Muted.Render(where),
				ui.Truncate(r.Snippet, snippetWidth),
			)
		}
		fmt.Print(tbl.String())
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
