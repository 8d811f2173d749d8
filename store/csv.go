// store/csv.go
package store

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/rustyeddy/stockfeed/market"
)

// ExportCSV writes a ticker's history to w as
// id,ticker,price,time rows, most recent first. Returns the number of
// rows written (excluding the header).
func ExportCSV(ctx context.Context, s Store, ticker market.Ticker, limit int, w io.Writer) (int, error) {
	recs, err := s.History(ctx, ticker, limit)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "ticker", "price", "time"}); err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range recs {
		row := []string{
			rec.ID,
			rec.Ticker,
			rec.Price.StringFixed(6),
			rec.Time.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return written, err
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, err
	}
	return written, nil
}
