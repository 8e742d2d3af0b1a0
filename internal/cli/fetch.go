package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"etf-return-stats/internal/app"
)

var (
	fetchCSVPath     string
	fetchPruneBefore string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch price history and cache it",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.FetchOptions{
			CSVPath: fetchCSVPath,
		}
		if fetchPruneBefore != "" {
			cutoff, err := time.Parse(time.DateOnly, fetchPruneBefore)
			if err != nil {
				return fmt.Errorf("invalid --prune-before date %q: %w", fetchPruneBefore, err)
			}
			opts.PruneBefore = cutoff
		}
		return getApp().Fetch(cmd.Context(), opts)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCSVPath, "csv", "", "Path to write a CSV snapshot of fetched prices")
	fetchCmd.Flags().StringVar(&fetchPruneBefore, "prune-before", "", "Delete cached bars older than this date (YYYY-MM-DD)")
}
