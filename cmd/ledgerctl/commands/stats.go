package commands

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/review-memory/internal/ledger"
	"github.com/benvon/review-memory/internal/storage"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		userID string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the cumulative review statistics of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(store storage.Store) error {
				history, err := ledger.New(ledger.PartitionKey(userID), store).Read(cmd.Context())
				if err != nil {
					return err
				}
				stats := history.Stats

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(stats)
				}

				table := a.ui.table([]string{"FIELD", "VALUE"})
				_ = table.Append([]string{"Total reviews", strconv.Itoa(stats.TotalReviews)})
				_ = table.Append([]string{"Retained", strconv.Itoa(len(history.Reviews))})
				_ = table.Append([]string{"Languages", joinOrDash(stats.LanguagesUsed)})
				_ = table.Append([]string{"Common issues", joinOrDash(stats.CommonIssues)})
				_ = table.Append([]string{"Last review", formatMillis(stats.LastReviewDate)})
				return table.Render()
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (empty selects the default user)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the statistics as JSON")
	return cmd
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
