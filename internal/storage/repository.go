package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertPriceSQL = `INSERT INTO price_bars (
        ticker,
        bar_date,
        adj_close,
        source
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (ticker, bar_date) DO UPDATE
    SET
        adj_close = EXCLUDED.adj_close,
        source    = EXCLUDED.source;`

	listPricesBetweenSQL = `SELECT
        ticker,
        bar_date,
        adj_close,
        source,
        created_at
    FROM price_bars
    WHERE ticker = $1
      AND bar_date >= $2
      AND bar_date < $3
    ORDER BY bar_date;`

	countPricesSQL = `SELECT COUNT(*) FROM price_bars WHERE ticker = $1;`

	deletePricesBeforeSQL = `DELETE FROM price_bars WHERE bar_date < $1;`
)

// PriceStore defines operations for price history persistence.
type PriceStore interface {
	UpsertPrices(ctx context.Context, records []PriceRecord) error
	ListPricesBetween(ctx context.Context, ticker string, from, to time.Time) ([]PriceRecord, error)
	CountPrices(ctx context.Context, ticker string) (int64, error)
	DeletePricesBefore(ctx context.Context, olderThan time.Time) error
}

// Store aggregates access to the cached price history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertPrices persists or refreshes a batch of daily bars.
func (s *Store) UpsertPrices(ctx context.Context, records []PriceRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertPriceSQL, rec.Ticker, rec.Date, rec.AdjClose.String(), rec.Source)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert price bar: %w", execErr)
		}
	}
	return nil
}

// ListPricesBetween lists a ticker's bars within a date window, ordered
// ascending by date.
func (s *Store) ListPricesBetween(ctx context.Context, ticker string, from, to time.Time) ([]PriceRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listPricesBetweenSQL, ticker, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list prices between: %w", queryErr)
	}
	defer rows.Close()

	records := make([]PriceRecord, 0)
	for rows.Next() {
		rec, scanErr := scanPriceRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// CountPrices returns the number of cached bars for a ticker.
func (s *Store) CountPrices(ctx context.Context, ticker string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pool.QueryRow(ctx, countPricesSQL, ticker).Scan(&count); err != nil {
		return 0, fmt.Errorf("count prices: %w", err)
	}
	return count, nil
}

// DeletePricesBefore prunes bars older than the cutoff.
func (s *Store) DeletePricesBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deletePricesBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete prices before: %w", execErr)
	}
	return nil
}

func scanPriceRecord(rows pgx.Rows) (PriceRecord, error) {
	var (
		rec      PriceRecord
		adjClose string
	)
	if err := rows.Scan(&rec.Ticker, &rec.Date, &adjClose, &rec.Source, &rec.CreatedAt); err != nil {
		return PriceRecord{}, fmt.Errorf("scan price bar: %w", err)
	}

	parsed, err := decimal.NewFromString(adjClose)
	if err != nil {
		return PriceRecord{}, fmt.Errorf("parse adj_close %q: %w", adjClose, err)
	}
	rec.AdjClose = parsed
	return rec, nil
}

var _ PriceStore = (*Store)(nil)
