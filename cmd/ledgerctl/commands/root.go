// Package commands implements ledgerctl, the operator CLI for review histories held in storage.
package commands

import (
	"github.com/spf13/cobra"
)

type app struct {
	ui     *ui
	source storeFlags
}

// NewRootCmd builds the ledgerctl command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and maintain stored review histories",
		Long:          "ledgerctl reads and maintains the per-user review histories the review-memory server persists. Storage settings come from the same environment variables as the server and can be overridden with flags.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.ui = &ui{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
		},
	}
	a.source.register(rootCmd, "")

	rootCmd.AddCommand(
		newHistoryCmd(a),
		newStatsCmd(a),
		newClearCmd(a),
		newCopyCmd(a),
		newPingCmd(a),
	)
	return rootCmd
}
