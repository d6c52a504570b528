package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgracey/lattice/internal/classdef"
	"github.com/sgracey/lattice/internal/config"
	"github.com/sgracey/lattice/internal/ui"
)

var initClassesPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and database",
	Long: `Creates the global config file (if missing), initializes the database
and seeds it with class definitions.

Without --classes a single Note class with a rich-text Body is created.

Examples:
  lattice init
  lattice init --classes classes.yaml
  lattice init --db ./kb.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createdPath, err := config.CreateDefault()
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		def := classdef.Default()
		if initClassesPath != "" {
			def, err = classdef.Load(initClassesPath)
			if err != nil {
				return err
			}
		}
		created, err := classdef.Apply(st, def)
		if err != nil {
			return err
		}

		fmt.Println(ui.Successf("config at %s", createdPath))
		fmt.Println(ui.Successf("database at %s", cfg.DatabasePath()))
		if created > 0 {
			fmt.Println(ui.Successf("seeded %d classes", created))
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initClassesPath, "classes", "", "YAML file with class definitions to seed")
	rootCmd.AddCommand(initCmd)
}
