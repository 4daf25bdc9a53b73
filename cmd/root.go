package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eiractl/config"
	"eiractl/internal/apiclient"
	"eiractl/internal/datasets"
)

var (
	cfg  *config.Config
	logs *config.Logging
)

var rootCmd = &cobra.Command{
	Use:   "eiractl",
	Short: "Client and backend for the EIRA dataset service",
	Long: `eiractl talks to the EIRA dataset service. It can copy a dataset into its
dedicated bucket, upload a .txt file of video links for processing, and show
the progress of that processing.

The serve command runs the backend the other commands talk to.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if isVerbose(cmd) && logs != nil {
			logs.SetLevel(slog.LevelDebug)
		}
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted. --verbose raises the level of logging.
func Execute(config *config.Config, logging *config.Logging) error {
	cfg = config
	logs = logging
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.PersistentFlags().StringP("server", "s", "", "Override backend URL from config")
	rootCmd.PersistentFlags().StringP("token", "t", "", "API token (overrides environment and stored token)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getServerURL(cmd *cobra.Command) string {
	server, _ := cmd.Flags().GetString("server")
	if server != "" {
		return server
	}
	if cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return config.DefaultServerURL
}

func getToken(cmd *cobra.Command) string {
	token, _ := cmd.Flags().GetString("token")
	store, err := config.DefaultTokenStore()
	if err != nil {
		slog.Debug("token store unavailable", "error", err)
		store = nil
	}
	return config.ResolveToken(token, cfg, store)
}

func newAPIClient(cmd *cobra.Command) (*apiclient.Client, error) {
	return apiclient.New(getServerURL(cmd), getToken(cmd))
}

func loadTable() (datasets.Table, error) {
	return datasets.Load(cfg.DatasetsFile)
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
