package market

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker identifies a tradable symbol. Symbols are case-sensitive and
// never validated beyond what the upstream provider confirms.
type Ticker = string

// ErrNotFound reports that no price has ever been resolvable for a
// ticker. It is an absence, not a failure: infrastructure errors are
// returned as themselves so callers can tell the two apart.
var ErrNotFound = errors.New("ticker not found")

// Quote is a resolved (ticker, price) pair. It carries no timestamp.
type Quote struct {
	Ticker Ticker
	Price  decimal.Decimal
}

// PriceRecord is one append-only row of price history. Records are
// immutable once created. "Latest" means max Time; ties break on ID,
// which is a ULID and therefore preserves insertion order.
type PriceRecord struct {
	ID     string
	Ticker Ticker
	Price  decimal.Decimal
	Time   time.Time
}

// Quote derives the externally visible value from a record.
func (r PriceRecord) Quote() Quote {
	return Quote{Ticker: r.Ticker, Price: r.Price}
}
