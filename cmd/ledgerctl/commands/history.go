package commands

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/models"
	"github.com/benvon/review-memory/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		userID string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the retained reviews of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store storage.Store) error {
				partition := ledger.PartitionKey(userID)
				history, err := ledger.New(partition, store).Read(cmd.Context())
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(history)
				}

				if len(history.Reviews) == 0 {
					a.ui.info("No reviews stored for %s", partition)
					return nil
				}
				return renderHistory(a.ui, history.Reviews)
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (empty selects the default user)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the history as JSON")
	return cmd
}

// renderHistory prints newest first
func renderHistory(u *ui, reviews []models.ReviewRecord) error {
	table := u.table([]string{"ID", "WHEN", "MODE", "LANGUAGE", "ISSUES", "SUGGESTIONS", "SUMMARY"})
	for i := len(reviews) - 1; i >= 0; i-- {
		r := reviews[i]
		_ = table.Append([]string{
			r.ID,
			formatMillis(r.Timestamp),
			string(r.Mode),
			r.Language,
			strconv.Itoa(r.Issues),
			strconv.Itoa(r.Suggestions),
			r.Summary,
		})
	}
	return table.Render()
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return humanize.Time(time.UnixMilli(ms))
}
