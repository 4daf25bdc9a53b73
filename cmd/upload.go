package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"eiractl/internal/ui"
	"eiractl/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a .txt file of video links for processing",
	Long: `Upload a text file with one video link per line. The backend downloads
each video, extracts audio and frames, and stores the results in the
processing bucket.

Only files ending in .txt are sent. Use "eiractl status --watch" to follow
the processing.`,
	Example: `  # Upload a list of links
  eiractl upload links.txt

  # Upload and then follow progress
  eiractl upload links.txt && eiractl status --watch`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args)
	},
}

func runUpload(cmd *cobra.Command, args []string) {
	timeout, _ := cmd.Flags().GetInt("timeout")
	out := cmd.OutOrStdout()
	path := args[0]

	client, err := newAPIClient(cmd)
	if err != nil {
		utils.FprintError(out, err, "upload")
		return
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
	defer cancel()

	styles := ui.DefaultStyles()
	if ui.AcceptsFile(path) {
		if isVerbose(cmd) {
			if info, err := os.Stat(path); err == nil {
				cmd.PrintErrf("Uploading %s (%s) to %s\n", path, utils.FormatBytes(info.Size()), client.BaseURL())
			}
		}
		fmt.Fprintln(out, styles.Line(ui.UploadPending.Text, ui.UploadPending.State))
	}

	trigger := ui.NewTrigger(nil)
	trigger.Run(func() {
		status := ui.Upload(ctx, client, path)
		fmt.Fprintln(out, styles.Line(status.Text, status.State))
	})

	if isVerbose(cmd) {
		cmd.PrintErrln("Upload operation completed")
	}
}

func init() {
	uploadCmd.Flags().Int("timeout", 600, "Timeout in seconds for the operation (default: 10 minutes)")
}
