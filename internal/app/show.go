package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"etf-return-stats/internal/report"
	"etf-return-stats/internal/storage"
)

// Show runs the analysis and prints the summary tables to stdout.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	var priceStore storage.PriceStore
	if store != nil {
		priceStore = store
	}

	prices, err := a.loadPrices(ctx, a.newFetcher(), priceStore, opts.FromCache)
	if err != nil {
		return err
	}

	rep, genErr := report.Generate(a.Config.Report, prices, a.Logger)

	printMoments(rep)
	printCorrelation(rep)
	printNormality(rep, a.Config.Report.ConfidenceLevel)

	return genErr
}

func printMoments(rep *report.Report) {
	if len(rep.Moments) == 0 {
		fmt.Fprintln(os.Stdout, "no moment summaries computed")
		return
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Ticker\tN\tMean\tStdDev\tSkew\tKurtosis")
	for _, m := range rep.Moments {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\t%s\n",
			m.Ticker, m.N,
			formatPrice(m.Mean), formatPrice(m.StdDev), formatPrice(m.Skewness), formatPrice(m.Kurtosis))
	}
	writer.Flush()
	fmt.Fprintln(os.Stdout)
}

func printCorrelation(rep *report.Report) {
	cm := rep.Correlation
	if cm == nil {
		fmt.Fprintln(os.Stdout, "no correlation matrix computed")
		return
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(writer, "Kendall tau")
	for _, idx := range cm.Order {
		fmt.Fprintf(writer, "\t%s", cm.Tickers[idx])
	}
	fmt.Fprintln(writer)

	for _, i := range cm.Order {
		fmt.Fprint(writer, cm.Tickers[i])
		for _, j := range cm.Order {
			fmt.Fprintf(writer, "\t%.3f", cm.Tau.At(i, j))
		}
		fmt.Fprintln(writer)
	}
	writer.Flush()
	fmt.Fprintln(os.Stdout)
}

func printNormality(rep *report.Report, confidence float64) {
	if len(rep.Normality) == 0 && rep.GoodnessOfFit == nil {
		fmt.Fprintln(os.Stdout, "no normality tests computed")
		return
	}
	alpha := 1 - confidence

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Ticker\tMethod\tStatistic\tP-Value\tReject at %.2f\n", alpha)
	for _, res := range rep.Normality {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%v\n",
			res.Ticker, res.Method, formatPrice(res.Statistic), formatPrice(res.PValue), res.PValue < alpha)
	}
	if g := rep.GoodnessOfFit; g != nil {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%v\n",
			g.Ticker, g.Method, formatPrice(g.Statistic), formatPrice(g.PValue), g.PValue < alpha)
	}
	writer.Flush()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
