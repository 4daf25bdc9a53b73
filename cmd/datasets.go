package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"eiractl/pkg/utils"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List known dataset types",
	Long: `List the dataset types accepted by "eiractl fetch", with the buckets each
one is copied between.

The table is built in unless DATASETS_FILE points to a YAML file.`,
	Example: `  # Show the full table as JSON
  eiractl datasets

  # Print only the type names
  eiractl datasets --names`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runDatasets(cmd)
	},
}

func runDatasets(cmd *cobra.Command) {
	namesOnly, _ := cmd.Flags().GetBool("names")
	out := cmd.OutOrStdout()

	table, err := loadTable()
	if err != nil {
		utils.FprintError(out, err, "datasets")
		return
	}

	if namesOnly {
		for _, datasetType := range table.Types() {
			fmt.Fprintf(out, "%s\t%s\n", datasetType, table.DisplayName(datasetType))
		}
		return
	}

	if err := utils.FprintJSON(out, table); err != nil {
		utils.FprintError(out, err, "datasets")
	}
}

func init() {
	datasetsCmd.Flags().Bool("names", false, "Print only type identifiers and display names")
}
