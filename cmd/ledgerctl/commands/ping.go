package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/storage"
)

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the storage backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store storage.Store) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				defer cancel()

				start := time.Now()
				if err := store.Ping(ctx); err != nil {
					a.ui.failure("Storage unreachable: %v", err)
					return err
				}
				a.ui.success("Storage reachable (%s)", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}
