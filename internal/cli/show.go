package cli

import (
	"github.com/spf13/cobra"

	"etf-return-stats/internal/app"
)

var showFromCache bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the summary tables to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ShowOptions{
			FromCache: showFromCache,
		}
		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().BoolVar(&showFromCache, "from-cache", false, "Read prices from the database cache instead of fetching")
}
