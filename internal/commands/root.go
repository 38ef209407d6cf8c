// Package commands wires the bankfeed CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "bankfeed",
		Short:   "Reconcile bank statements against a personal ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "bankfeed.yaml", "path to the configuration file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}
