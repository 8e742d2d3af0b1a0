package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"etf-return-stats/internal/config"
	"etf-return-stats/internal/stats"
)

// TickerMoments pairs a ticker with its distribution moments.
type TickerMoments struct {
	Ticker string
	stats.MomentSummary
}

// Report is the one-shot result of the statistical pipeline. Every field
// is a derived, read-only artifact; fields stay zero-valued when the
// corresponding analysis failed (the failure appears in the joined error
// returned by Generate).
type Report struct {
	GeneratedAt time.Time
	Start       time.Time
	End         time.Time
	Tickers     []string

	Prices  []stats.Series
	Returns []stats.Series
	Wide    stats.Wide

	Moments     []TickerMoments
	Correlation *stats.CorrelationMatrix

	RollingPair [2]string
	Rolling     []stats.RollingSeries
	PairKendall float64

	Normality     []stats.NormalityResult
	GoodnessOfFit *stats.NormalityResult
}

// Generate runs the full analysis over fetched price series. Per-ticker
// analyses run independently: a failure in one ticker never blocks the
// others, and every failure is collected into the returned error. The
// report always carries whatever succeeded.
func Generate(cfg config.ReportConfig, prices []stats.Series, logger zerolog.Logger) (*Report, error) {
	log := logger.With().Str("component", "report").Logger()

	rep := &Report{
		GeneratedAt: time.Now().UTC(),
		Start:       cfg.Start,
		End:         cfg.End,
		Tickers:     cfg.Tickers,
		Prices:      prices,
	}
	var failures []error

	// Per-ticker transforms: log returns, moments, normality.
	for _, series := range prices {
		returns, err := stats.LogReturns(series)
		if err != nil {
			failures = append(failures, fmt.Errorf("log returns: %w", err))
			continue
		}
		rep.Returns = append(rep.Returns, returns)

		if m, err := stats.Moments(returns); err != nil {
			failures = append(failures, fmt.Errorf("moment summary: %w", err))
		} else {
			rep.Moments = append(rep.Moments, TickerMoments{Ticker: returns.Ticker, MomentSummary: m})
		}

		if res, err := stats.JarqueBera(returns); err != nil {
			failures = append(failures, fmt.Errorf("normality test: %w", err))
		} else {
			rep.Normality = append(rep.Normality, res)
		}

		if returns.Ticker == cfg.KSTicker {
			if res, err := stats.KolmogorovSmirnov(returns); err != nil {
				failures = append(failures, fmt.Errorf("goodness of fit: %w", err))
			} else {
				rep.GoodnessOfFit = &res
			}
		}
	}

	// Cross-asset analyses need the aligned table.
	if len(rep.Returns) >= 2 {
		wide, err := stats.Align(rep.Returns)
		if err != nil {
			failures = append(failures, fmt.Errorf("align returns: %w", err))
		} else {
			rep.Wide = wide

			if cm, err := stats.KendallMatrix(wide); err != nil {
				failures = append(failures, fmt.Errorf("static correlation: %w", err))
			} else {
				rep.Correlation = cm
			}

			failures = append(failures, generateRolling(cfg, rep, wide)...)
		}
	} else {
		failures = append(failures, fmt.Errorf("align returns: %w: %d usable return series", stats.ErrInsufficientData, len(rep.Returns)))
	}

	for _, err := range failures {
		log.Warn().Err(err).Msg("analysis step failed")
	}
	log.Info().
		Int("tickers", len(rep.Tickers)).
		Int("aligned_rows", rep.Wide.Rows()).
		Int("failures", len(failures)).
		Msg("report generated")

	return rep, errors.Join(failures...)
}

func generateRolling(cfg config.ReportConfig, rep *Report, wide stats.Wide) []error {
	rep.RollingPair = [2]string{cfg.RollingPair[0], cfg.RollingPair[1]}

	x, err := wide.Column(cfg.RollingPair[0])
	if err != nil {
		return []error{fmt.Errorf("rolling correlation: %w", err)}
	}
	y, err := wide.Column(cfg.RollingPair[1])
	if err != nil {
		return []error{fmt.Errorf("rolling correlation: %w", err)}
	}

	if len(x) < cfg.SmallestWindow() {
		return []error{fmt.Errorf("rolling correlation %s/%s: %w: %d aligned observations below smallest window %d",
			cfg.RollingPair[0], cfg.RollingPair[1], stats.ErrInsufficientData, len(x), cfg.SmallestWindow())}
	}

	var failures []error
	for _, window := range cfg.RollingWindows {
		rs, err := stats.RollingCorrelation(wide.Dates, x, y, window)
		if err != nil {
			failures = append(failures, fmt.Errorf("rolling correlation %s/%s window %d: %w",
				cfg.RollingPair[0], cfg.RollingPair[1], window, err))
			continue
		}
		rep.Rolling = append(rep.Rolling, rs)
	}

	// Whole-history Kendall overlay. Note this deliberately mixes a rank
	// correlation reference against trailing Pearson windows; the chart
	// labels both definitions.
	tau, err := stats.Kendall(x, y)
	if err != nil {
		failures = append(failures, fmt.Errorf("pair correlation %s/%s: %w", cfg.RollingPair[0], cfg.RollingPair[1], err))
	} else {
		rep.PairKendall = tau
	}

	return failures
}
