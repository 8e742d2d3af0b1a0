package cli

import (
	"github.com/spf13/cobra"

	"etf-return-stats/internal/app"
)

var (
	reportOutDir    string
	reportFromCache bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the full statistical report (charts, workbook, CSV tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{
			OutputDir: reportOutDir,
			FromCache: reportFromCache,
		}
		return getApp().Report(cmd.Context(), opts)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOutDir, "out", "", "Output directory (defaults to config)")
	reportCmd.Flags().BoolVar(&reportFromCache, "from-cache", false, "Read prices from the database cache instead of fetching")
}
