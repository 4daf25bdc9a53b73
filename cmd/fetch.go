package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"eiractl/internal/ui"
	"eiractl/pkg/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [dataset types...]",
	Short: "Copy datasets into their dedicated buckets",
	Long: `Ask the backend to copy one or more datasets from the main bucket into
their dedicated sub buckets.

Each dataset type is sent as its own request. When several types are given
the requests run at the same time and results are printed as they arrive.
Run "eiractl datasets" to list the known types.`,
	Example: `  # Copy the audio dataset
  eiractl fetch audio

  # Copy several datasets at once
  eiractl fetch audio video images-transcripts

  # Print the raw JSON response
  eiractl fetch video --json

  # Use a different backend
  eiractl fetch audio --server http://eira.internal:5000`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runFetch(cmd, args)
	},
}

func runFetch(cmd *cobra.Command, args []string) {
	asJSON, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetInt("timeout")
	out := cmd.OutOrStdout()

	client, err := newAPIClient(cmd)
	if err != nil {
		utils.FprintError(out, err, "fetch")
		return
	}

	table, err := loadTable()
	if err != nil {
		utils.FprintError(out, err, "fetch")
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.PrintErrf("Fetching %d dataset(s) from %s\n", len(args), client.BaseURL())
	}

	styles := ui.DefaultStyles()
	var mu sync.Mutex
	printLine := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	}

	var wg sync.WaitGroup
	for _, datasetType := range args {
		wg.Add(1)
		go func(datasetType string) {
			defer wg.Done()

			trigger := ui.NewTrigger(func(disabled bool) {
				slog.Debug("fetch trigger", "dataset", datasetType, "disabled", disabled)
			})
			trigger.Run(func() {
				if asJSON {
					result, err := client.CopyDataset(ctx, datasetType)
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						utils.FprintError(out, err, "fetch")
						return
					}
					if err := utils.FprintJSON(out, result); err != nil {
						utils.FprintError(out, err, "fetch")
					}
					return
				}

				printLine(styles.Line(fmt.Sprintf("Fetching %s...", table.DisplayName(datasetType)), ui.StateInfo))
				result := ui.CopyDataset(ctx, client, datasetType)
				printLine("Result: " + styles.Result(result))
			})
		}(datasetType)
	}
	wg.Wait()
}

func init() {
	fetchCmd.Flags().Bool("json", false, "Print the raw JSON response")
	fetchCmd.Flags().Int("timeout", 600, "Timeout in seconds for the operation (default: 10 minutes)")
}
