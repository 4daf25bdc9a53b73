package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eiractl/internal/apiclient"
	"eiractl/internal/models"
	"eiractl/internal/ui"
	"eiractl/pkg/utils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show link processing progress",
	Long: `Show how many of the uploaded video links have been processed, together
with the backend's processing log.

With --watch the status is polled at a fixed interval until interrupted.
On a terminal this opens an interactive view with a progress bar; otherwise
one plain block is printed per response.`,
	Example: `  # Print the current status once
  eiractl status

  # Follow progress
  eiractl status --watch

  # Poll every 10 seconds
  eiractl status --watch --interval 10s`,
	Run: func(cmd *cobra.Command, args []string) {
		runStatus(cmd)
	},
}

func runStatus(cmd *cobra.Command) {
	watch, _ := cmd.Flags().GetBool("watch")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	client, err := newAPIClient(cmd)
	if err != nil {
		utils.FprintError(out, err, "status")
		return
	}

	if watch {
		if err := watchStatus(cmd, client, out); err != nil {
			utils.FprintError(out, err, "status")
		}
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	snapshot, err := client.Status(ctx)
	if err != nil {
		utils.FprintError(out, err, "status")
		return
	}

	if asJSON {
		if err := utils.FprintJSON(out, snapshot); err != nil {
			utils.FprintError(out, err, "status")
		}
		return
	}
	fmt.Fprintln(out, ui.PlainStatus(ui.RenderStatus(snapshot)))
}

func watchStatus(cmd *cobra.Command, client *apiclient.Client, out io.Writer) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.PollInterval
	}

	if out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
		return ui.RunWatch(cmd.Context(), client, interval, client.BaseURL())
	}

	p := ui.NewStatusPoller(client, interval)

	if isVerbose(cmd) {
		cmd.PrintErrf("Polling %s every %s\n", client.BaseURL(), interval)
	}

	var mu sync.Mutex
	p.Run(cmd.Context(), func(snapshot *models.StatusSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, ui.PlainStatus(ui.RenderStatus(snapshot)))
		fmt.Fprintln(out)
	})
	return nil
}

func init() {
	statusCmd.Flags().BoolP("watch", "w", false, "Keep polling until interrupted")
	statusCmd.Flags().Duration("interval", 0, "Polling interval for --watch (default from EIRA_POLL_INTERVAL, 3s)")
	statusCmd.Flags().Bool("json", false, "Print the raw JSON snapshot")
}
