package provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/rustyeddy/stockfeed/market"
)

// DefaultTTL bounds how long a successfully fetched quote is served
// from cache before the upstream is consulted again.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	quote     market.Quote
	expiresAt time.Time
}

// Provider is the cache-aside front over the upstream client.
//
// Only successful fetches populate the cache. Failures are never
// cached, so the call after a failure retries upstream instead of
// waiting out a TTL.
type Provider struct {
	client *Client
	ttl    time.Duration
	log    *logrus.Logger

	mu    sync.RWMutex
	cache map[market.Ticker]cacheEntry
	group singleflight.Group

	now func() time.Time
}

func New(client *Client, ttl time.Duration, log *logrus.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{
		client: client,
		ttl:    ttl,
		log:    log,
		cache:  make(map[market.Ticker]cacheEntry),
		now:    time.Now,
	}
}

// GetQuote resolves a ticker through the cache, falling through to one
// upstream fetch per ticker no matter how many callers miss
// concurrently. "No data upstream" and transient upstream failures both
// surface as market.ErrNotFound; the transient ones are logged here and
// go no further.
func (p *Provider) GetQuote(ctx context.Context, ticker market.Ticker) (market.Quote, error) {
	if q, ok := p.cached(ticker); ok {
		return q, nil
	}

	v, err, _ := p.group.Do(ticker, func() (any, error) {
		// Re-check under the flight: a concurrent winner may have
		// populated the entry between our miss and now.
		if q, ok := p.cached(ticker); ok {
			return q, nil
		}

		q, err := p.client.fetchIntraday(ctx, ticker)
		if err != nil {
			return market.Quote{}, err
		}

		p.mu.Lock()
		p.cache[ticker] = cacheEntry{quote: q, expiresAt: p.now().Add(p.ttl)}
		p.mu.Unlock()
		return q, nil
	})

	if err != nil {
		if !errors.Is(err, market.ErrNotFound) {
			p.log.WithField("ticker", ticker).WithError(err).
				Warn("upstream fetch failed, treating as not found")
		}
		return market.Quote{}, market.ErrNotFound
	}
	return v.(market.Quote), nil
}

func (p *Provider) cached(ticker market.Ticker) (market.Quote, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.cache[ticker]
	if !ok || p.now().After(entry.expiresAt) {
		return market.Quote{}, false
	}
	return entry.quote, true
}
