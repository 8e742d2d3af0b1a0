package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"etf-return-stats/internal/config"
	"etf-return-stats/internal/fetcher"
	"etf-return-stats/internal/stats"
	"etf-return-stats/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.PriceFetcher {
	return fetcher.NewYahoo(fetcher.YahooOptions{
		BaseURL:   a.Config.Source.BaseURL,
		Timeout:   a.Config.Source.RequestTimeout,
		UserAgent: a.Config.Source.UserAgent,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// loadPrices materialises one price series per configured ticker, either
// from the price cache or by fetching live. Every ticker is attempted
// before failures are reported, so one bad symbol does not hide another.
func (a *App) loadPrices(ctx context.Context, source fetcher.PriceFetcher, store storage.PriceStore, fromCache bool) ([]stats.Series, error) {
	cfg := a.Config.Report

	series := make([]stats.Series, 0, len(cfg.Tickers))
	var failures []error
	for _, ticker := range cfg.Tickers {
		var (
			s   stats.Series
			err error
		)
		if fromCache {
			s, err = a.loadCached(ctx, store, ticker)
		} else {
			s, err = a.fetchLive(ctx, source, store, ticker)
		}
		if err != nil {
			failures = append(failures, err)
			continue
		}
		series = append(series, s)
	}

	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return series, nil
}

func (a *App) loadCached(ctx context.Context, store storage.PriceStore, ticker string) (stats.Series, error) {
	if store == nil {
		return stats.Series{}, errors.New("database.dsn not configured; cannot load prices from cache")
	}

	cfg := a.Config.Report
	records, err := store.ListPricesBetween(ctx, ticker, cfg.Start, cfg.End)
	if err != nil {
		return stats.Series{}, fmt.Errorf("load cached prices for %s: %w", ticker, err)
	}
	if len(records) == 0 {
		return stats.Series{}, fmt.Errorf("no cached prices for %s in configured range; run fetch first", ticker)
	}

	s := stats.Series{Ticker: ticker}
	for _, rec := range records {
		s.Dates = append(s.Dates, rec.Date)
		s.Values = append(s.Values, rec.AdjClose.InexactFloat64())
	}
	return s, nil
}

func (a *App) fetchLive(ctx context.Context, source fetcher.PriceFetcher, store storage.PriceStore, ticker string) (stats.Series, error) {
	cfg := a.Config.Report
	bars, err := source.FetchDaily(ctx, ticker, cfg.Start, cfg.End)
	if err != nil {
		return stats.Series{}, fmt.Errorf("fetch prices for %s: %w", ticker, err)
	}

	a.Logger.Info().Str("ticker", ticker).Int("bars", len(bars)).Msg("fetched price history")

	if store != nil {
		records := make([]storage.PriceRecord, len(bars))
		for i, bar := range bars {
			records[i] = storage.PriceRecord{
				Ticker:   bar.Ticker,
				Date:     bar.Date,
				AdjClose: bar.AdjClose,
				Source:   "yahoo",
			}
		}
		if err := store.UpsertPrices(ctx, records); err != nil {
			a.Logger.Error().Err(err).Str("ticker", ticker).Msg("failed to cache fetched prices")
		}
	}

	s := stats.Series{Ticker: ticker}
	for _, bar := range bars {
		s.Dates = append(s.Dates, bar.Date)
		s.Values = append(s.Values, bar.AdjClose.InexactFloat64())
	}
	return s, nil
}

// ReportOptions hold parameters for the report command.
type ReportOptions struct {
	OutputDir string
	FromCache bool
}

// FetchOptions configure the fetch command.
type FetchOptions struct {
	CSVPath     string
	PruneBefore time.Time
}

// ShowOptions configure the show command.
type ShowOptions struct {
	FromCache bool
}

func resolveOutputDir(cfg *config.Config, override string) string {
	if override != "" {
		return override
	}
	return cfg.Report.OutputDir
}
