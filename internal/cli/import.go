package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgracey/lattice/internal/doc"
	"github.com/sgracey/lattice/internal/markdown"
	"github.com/sgracey/lattice/internal/store"
	"github.com/sgracey/lattice/internal/ui"
)

var importClass string

var importCmd = &cobra.Command{
	Use:   "import <file.md> [file.md...]",
	Short: "Import markdown files as objects",
	Long: `Imports markdown files as objects. Each file becomes one object titled
after the filename; the content goes into the class's first rich-text
property. Wikilinks in the text join the link graph, resolving against
existing objects and the other imported files.

Examples:
  lattice import notes/*.md
  lattice import --class Book reading/dune.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		cls, err := st.GetClassByTitle(importClass)
		if err == store.ErrNotFound {
			return fmt.Errorf("class %q does not exist; run 'lattice init' first", importClass)
		}
		if err != nil {
			return err
		}
		classProps, err := st.ListClassProps(cls.ID)
		if err != nil {
			return err
		}
		var bodyProp *store.ClassProp
		for i, cp := range classProps {
			if cp.Type == store.PropRichText {
				bodyProp = &classProps[i]
				break
			}
		}
		if bodyProp == nil {
			return fmt.Errorf("class %q has no rich-text property to import into", cls.Title)
		}

		imported := 0
		for _, path := range args {
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			d, err := markdown.Import(source)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			raw, err := doc.Serialize(d)
			if err != nil {
				return err
			}

			title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			values, err := defaultValues(classProps)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			body := string(raw)
			values[bodyProp.ID] = store.Value{Text: &body}

			if _, err := st.CreateObject(store.ObjectParams{
				Title:   title,
				ClassID: cls.ID,
				Values:  values,
			}); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			imported++
		}

		fmt.Println(ui.Successf("imported %d objects into class %s", imported, ui.Title(cls.Title)))
		return nil
	},
}

// defaultValues builds a neutral value for every class property: empty
// documents for rich text, false for booleans, the first option for selects
// and no value for the reference types.
func defaultValues(classProps []store.ClassProp) (map[int64]store.Value, error) {
	values := make(map[int64]store.Value, len(classProps))
	for _, cp := range classProps {
		switch cp.Type {
		case store.PropRichText:
			raw, err := doc.Serialize(&doc.Document{})
			if err != nil {
				return nil, err
			}
			s := string(raw)
			values[cp.ID] = store.Value{Text: &s}
		case store.PropBoolean:
			f := false
			values[cp.ID] = store.Value{Bool: &f}
		case store.PropSelect:
			if len(cp.SelectOptions) > 0 {
				opt := cp.SelectOptions[0]
				values[cp.ID] = store.Value{Select: &opt}
			} else {
				values[cp.ID] = store.Value{}
			}
		default:
			values[cp.ID] = store.Value{}
		}
	}
	return values, nil
}

func init() {
	importCmd.Flags().StringVar(&importClass, "class", "Note", "class to create imported objects in")
	rootCmd.AddCommand(importCmd)
}
