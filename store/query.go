package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/stockfeed/market"
)

// Latest returns the most recent record for a ticker. The most recent
// record is the one with the greatest time; equal times order by id, so
// of two rows written at the same instant the later insert wins.
// Returns market.ErrNotFound when the ticker has no rows at all.
func (s *SQLite) Latest(ctx context.Context, ticker market.Ticker) (market.PriceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ticker, price, time
		FROM prices
		WHERE ticker = ?
		ORDER BY time DESC, id DESC
		LIMIT 1`, ticker)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return market.PriceRecord{}, market.ErrNotFound
	}
	if err != nil {
		return market.PriceRecord{}, err
	}
	return rec, nil
}

// History returns up to limit records for a ticker, most recent first.
func (s *SQLite) History(ctx context.Context, ticker market.Ticker, limit int) ([]market.PriceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, price, time
		FROM prices
		WHERE ticker = ?
		ORDER BY time DESC, id DESC
		LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.PriceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (market.PriceRecord, error) {
	var (
		rec      market.PriceRecord
		priceStr string
		ts       time.Time
	)

	if err := row.Scan(&rec.ID, &rec.Ticker, &priceStr, &ts); err != nil {
		return market.PriceRecord{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return market.PriceRecord{}, err
	}

	rec.Price = price
	rec.Time = ts.UTC()
	return rec, nil
}
