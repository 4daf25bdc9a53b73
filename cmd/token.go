package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"eiractl/config"
	"eiractl/pkg/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored API token",
	Long: `Manage the API token sent as a bearer token with fetch requests.

The token used is the first one set among: the --token flag, the
EIRA_API_TOKEN environment variable, and the stored token. When none is set
the placeholder "changeme" is sent.`,
}

var tokenSetCmd = &cobra.Command{
	Use:     "set [token]",
	Short:   "Store an API token in the user config directory",
	Example: `  eiractl token set 5f2b0c9e`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTokenSet(cmd, args)
	},
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the token that requests will use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), getToken(cmd))
	},
}

func runTokenSet(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	store, err := config.DefaultTokenStore()
	if err != nil {
		utils.FprintError(out, err, "token set")
		return
	}
	if err := store.Set(args[0]); err != nil {
		utils.FprintError(out, fmt.Errorf("failed to save token: %w", err), "token set")
		return
	}
	fmt.Fprintf(out, "Token saved to %s\n", store.Path())
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenShowCmd)
}
