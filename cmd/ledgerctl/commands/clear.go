package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/storage"
)

const clearLong = `clear deletes the stored history and statistics of --user.

A running server does not restore them: its next review for the user reloads the
erased state before appending. Until then its history view may serve cached records.`

func newClearCmd(a *app) *cobra.Command {
	var (
		userID  string
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the review history and statistics of a user",
		Long:  clearLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			partition := ledger.PartitionKey(userID)
			if !confirm {
				return fmt.Errorf("refusing to clear %s without --yes", partition)
			}
			return a.withStore(cmd, func(store storage.Store) error {
				if err := ledger.New(partition, store).Clear(cmd.Context()); err != nil {
					return err
				}
				a.ui.success("Cleared history for %s", partition)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (empty selects the default user)")
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "confirm the erase")
	return cmd
}
