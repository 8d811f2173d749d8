// Package resolver answers "latest price for a ticker" through the
// layered fallback: persistent store first, then the external provider,
// persisting whatever the provider returns.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stockfeed/market"
	"github.com/rustyeddy/stockfeed/registry"
	"github.com/rustyeddy/stockfeed/store"
)

// QuoteFetcher is the external provider surface the resolver needs.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, ticker market.Ticker) (market.Quote, error)
}

type Resolver struct {
	store    store.Store
	provider QuoteFetcher
	registry *registry.Registry
	log      *logrus.Logger

	now func() time.Time
}

func New(s store.Store, p QuoteFetcher, r *registry.Registry, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		store:    s,
		provider: p,
		registry: r,
		log:      log,
		now:      time.Now,
	}
}

// Resolve returns the latest quote for a ticker.
//
// A stored record wins outright; the provider is not consulted. On a
// store miss the provider is asked, and a successful fetch is persisted
// with the current UTC instant before returning. Tickers only enter the
// active registry on a successful resolution, so symbols that have
// never resolved never join the broadcast set.
//
// Store errors propagate so callers can tell "never existed" from
// "temporarily unavailable". Two concurrent first resolutions of the
// same ticker may both miss the store and both persist; the duplicate
// rows are harmless for latest-reads and accepted.
func (r *Resolver) Resolve(ctx context.Context, ticker market.Ticker) (market.Quote, error) {
	rec, err := r.store.Latest(ctx, ticker)
	if err == nil {
		r.registry.Add(ticker)
		return rec.Quote(), nil
	}
	if !errors.Is(err, market.ErrNotFound) {
		return market.Quote{}, fmt.Errorf("latest %s: %w", ticker, err)
	}

	quote, err := r.provider.GetQuote(ctx, ticker)
	if errors.Is(err, market.ErrNotFound) {
		r.log.WithField("ticker", ticker).Debug("no price resolvable")
		return market.Quote{}, market.ErrNotFound
	}
	if err != nil {
		return market.Quote{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	if err := r.store.Append(ctx, market.PriceRecord{
		Ticker: ticker,
		Price:  quote.Price,
		Time:   r.now().UTC(),
	}); err != nil {
		return market.Quote{}, fmt.Errorf("persist %s: %w", ticker, err)
	}

	r.registry.Add(ticker)
	return quote, nil
}
