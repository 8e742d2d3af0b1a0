package app

import (
	"context"
	"os"
	"path/filepath"

	"etf-return-stats/internal/render"
	"etf-return-stats/internal/report"
	"etf-return-stats/internal/stats"
	"etf-return-stats/internal/storage"
)

// Report runs the full pipeline and writes charts, workbook, and CSV
// tables to the output directory. Analysis failures are collected and
// returned after rendering whatever succeeded.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	outDir := resolveOutputDir(a.Config, opts.OutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

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
	if genErr != nil {
		a.Logger.Warn().Err(genErr).Msg("report generated with failures; rendering partial results")
	}

	a.renderArtifacts(outDir, rep)

	return genErr
}

func (a *App) renderArtifacts(outDir string, rep *report.Report) {
	cfg := a.Config.Report
	indexPath, rollingPath, histPaths := render.ChartPaths(outDir, rep)

	if len(rep.Prices) > 0 {
		if err := render.WriteIndexChart(indexPath, rep.Prices, cfg.MaxChartPoints); err != nil {
			a.Logger.Error().Err(err).Msg("failed to render price index chart")
		} else {
			a.Logger.Info().Str("path", indexPath).Msg("wrote price index chart")
		}
	}

	if len(rep.Rolling) > 0 {
		if err := render.WriteRollingChart(rollingPath, rep.RollingPair, rep.Rolling, rep.PairKendall, cfg.MaxChartPoints); err != nil {
			a.Logger.Error().Err(err).Msg("failed to render rolling correlation chart")
		} else {
			a.Logger.Info().Str("path", rollingPath).Msg("wrote rolling correlation chart")
		}
	}

	for _, returns := range rep.Returns {
		bins, err := stats.Histogram(returns, cfg.HistogramBins)
		if err != nil {
			a.Logger.Error().Err(err).Str("ticker", returns.Ticker).Msg("failed to bin returns")
			continue
		}
		path := histPaths[returns.Ticker]
		if err := render.WriteHistogramChart(path, returns.Ticker, bins, cfg.HistogramClip.Min, cfg.HistogramClip.Max); err != nil {
			a.Logger.Error().Err(err).Str("ticker", returns.Ticker).Msg("failed to render histogram")
		} else {
			a.Logger.Info().Str("path", path).Msg("wrote return histogram")
		}
	}

	workbookPath := filepath.Join(outDir, "report.xlsx")
	if err := render.WriteWorkbook(workbookPath, rep, cfg.ConfidenceLevel); err != nil {
		a.Logger.Error().Err(err).Msg("failed to write report workbook")
	} else {
		a.Logger.Info().Str("path", workbookPath).Msg("wrote report workbook")
	}

	a.writeTable(filepath.Join(outDir, "moments.csv"), rep, render.WriteMomentsCSV, len(rep.Moments) > 0)
	a.writeTable(filepath.Join(outDir, "correlation.csv"), rep, render.WriteCorrelationCSV, rep.Correlation != nil)
	a.writeTable(filepath.Join(outDir, "normality.csv"), rep, render.WriteNormalityCSV, len(rep.Normality) > 0 || rep.GoodnessOfFit != nil)
	a.writeTable(filepath.Join(outDir, "returns.csv"), rep, render.WriteReturnsCSV, rep.Wide.Rows() > 0)
}

func (a *App) writeTable(path string, rep *report.Report, write func(string, *report.Report) error, available bool) {
	if !available {
		return
	}
	if err := write(path, rep); err != nil {
		a.Logger.Error().Err(err).Str("path", path).Msg("failed to write table")
		return
	}
	a.Logger.Info().Str("path", path).Msg("wrote table")
}
