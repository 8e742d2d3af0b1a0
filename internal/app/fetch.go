package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"time"

	"etf-return-stats/internal/stats"
	"etf-return-stats/internal/storage"
)

// Fetch retrieves price history for every configured ticker, caching it
// in Postgres when configured and optionally snapshotting it to CSV.
func (a *App) Fetch(ctx context.Context, opts FetchOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	if store == nil && opts.CSVPath == "" {
		return errors.New("database.dsn not configured and no --csv path given; fetched prices would be discarded")
	}
	var priceStore storage.PriceStore
	if store != nil {
		priceStore = store
	}

	series, err := a.loadPrices(ctx, a.newFetcher(), priceStore, false)
	if err != nil {
		return err
	}

	total := 0
	for _, s := range series {
		total += s.Len()
	}
	a.Logger.Info().Int("tickers", len(series)).Int("bars", total).Msg("price history fetched")

	if priceStore != nil {
		if !opts.PruneBefore.IsZero() {
			if err := priceStore.DeletePricesBefore(ctx, opts.PruneBefore); err != nil {
				return err
			}
			a.Logger.Info().Time("cutoff", opts.PruneBefore).Msg("pruned stale cached bars")
		}
		for _, s := range series {
			count, err := priceStore.CountPrices(ctx, s.Ticker)
			if err != nil {
				a.Logger.Warn().Err(err).Str("ticker", s.Ticker).Msg("failed to count cached bars")
				continue
			}
			a.Logger.Info().Str("ticker", s.Ticker).Int64("cached_bars", count).Msg("cache state")
		}
	}

	if opts.CSVPath != "" {
		if err := writePricesCSV(opts.CSVPath, series); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.CSVPath).Msg("wrote price snapshot")
	}

	return nil
}

func writePricesCSV(path string, series []stats.Series) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"ticker", "date", "adj_close"}); err != nil {
		return err
	}
	for _, s := range series {
		for i := range s.Values {
			record := []string{
				s.Ticker,
				s.Dates[i].Format(time.DateOnly),
				formatPrice(s.Values[i]),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	return writer.Error()
}
