package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/sgracey/lattice/internal/doc"
	"github.com/sgracey/lattice/internal/markdown"
	"github.com/sgracey/lattice/internal/store"
	"github.com/sgracey/lattice/internal/ui"
)

var exportClassFilter string

var exportCmd = &cobra.Command{
	Use:   "export <directory>",
	Short: "Export objects as markdown files",
	Long: `Exports every object's rich-text content as a markdown file in the
given directory. Filenames are slugged object titles; the title itself
becomes the leading heading.

Examples:
  lattice export ./backup
  lattice export --class Note ./notes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		outDir := args[0]
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}

		var classID int64
		if exportClassFilter != "" {
			cls, err := st.GetClassByTitle(exportClassFilter)
			if err == store.ErrNotFound {
				return fmt.Errorf("class %q does not exist", exportClassFilter)
			}
			if err != nil {
				return err
			}
			classID = cls.ID
		}

		objects, err := st.ListObjects(classID)
		if err != nil {
			return err
		}

		exported := 0
		for _, obj := range objects {
			props, err := st.ListProperties(obj.ID)
			if err != nil {
				return err
			}

			out := "# " + obj.Title + "\n"
			for _, p := range props {
				if p.Type != store.PropRichText || p.Value.Text == nil {
					continue
				}
				d, err := doc.Parse([]byte(*p.Value.Text))
				if err != nil {
					return fmt.Errorf("object %q property %q: %w", obj.Title, p.ClassPropName, err)
				}
				if body := markdown.Export(d); body != "" {
					out += "\n" + body
				}
			}

			path := filepath.Join(outDir, slug.Make(obj.Title)+".md")
			if err := os.WriteFile(path, []byte(out), 0644); err != nil {
				return err
			}
			exported++
		}

		fmt.Println(ui.Successf("exported %d objects to %s", exported, outDir))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportClassFilter, "class", "", "only export objects of this class")
	rootCmd.AddCommand(exportCmd)
}
