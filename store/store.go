// store/store.go
package store

import (
	"context"

	"github.com/rustyeddy/stockfeed/market"
)

// Store is the append-only price history. Records are never updated or
// deleted; "latest" is resolved at read time.
type Store interface {
	Append(ctx context.Context, rec market.PriceRecord) error
	Latest(ctx context.Context, ticker market.Ticker) (market.PriceRecord, error)
	History(ctx context.Context, ticker market.Ticker, limit int) ([]market.PriceRecord, error)
	Close() error
}
