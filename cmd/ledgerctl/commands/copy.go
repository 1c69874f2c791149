package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/storage"
)

var errNoTarget = errors.New("--to-backend is required")

func newCopyCmd(a *app) *cobra.Command {
	var (
		target  storeFlags
		userIDs []string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy user histories from the configured store to another backend",
		Long:  "copy moves the stored history and statistics of each --user from the source store (environment or root flags) to the --to-* store. Entries are written with a single atomic PutAll per user, replacing what the target held.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.backend == "" {
				return errNoTarget
			}
			if len(userIDs) == 0 {
				userIDs = []string{""}
			}

			return a.withStore(cmd, func(src storage.Store) error {
				dst, err := openStore(cmd.Context(), target.options(storage.Options{}))
				if err != nil {
					return err
				}
				defer func() {
					if err := dst.Close(); err != nil {
						a.ui.warning("failed to close target storage: %v", err)
					}
				}()

				copied := 0
				for _, userID := range userIDs {
					partition := ledger.PartitionKey(userID)
					entries, err := src.Get(cmd.Context(), partition, ledger.ReviewsKey, ledger.StatsKey)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", partition, err)
					}
					if len(entries) == 0 {
						a.ui.warning("Nothing stored for %s, skipping", partition)
						continue
					}
					if dryRun {
						a.ui.info("Would copy %s (%d keys)", partition, len(entries))
						continue
					}
					if err := dst.PutAll(cmd.Context(), partition, entries); err != nil {
						return fmt.Errorf("failed to write %s: %w", partition, err)
					}
					copied++
					a.ui.success("Copied %s", partition)
				}
				if !dryRun {
					a.ui.info("%d of %d partitions copied to %s", copied, len(userIDs), target.backend)
				}
				return nil
			})
		},
	}

	target.register(cmd, "to-")
	cmd.Flags().StringSliceVarP(&userIDs, "user", "u", nil, "user id to copy, repeatable (default: the default user)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be copied without writing")
	return cmd
}
