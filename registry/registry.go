// Package registry tracks the set of tickers that have resolved
// successfully at least once. The set only grows: there is no removal
// for the life of the process.
package registry

import (
	"sync"

	"github.com/rustyeddy/stockfeed/market"
)

type Registry struct {
	mu      sync.RWMutex
	tickers map[market.Ticker]struct{}
}

func New() *Registry {
	return &Registry{tickers: make(map[market.Ticker]struct{})}
}

// Add marks a ticker as active. Idempotent and safe under concurrent
// callers.
func (r *Registry) Add(t market.Ticker) {
	r.mu.Lock()
	r.tickers[t] = struct{}{}
	r.mu.Unlock()
}

// Snapshot returns the tickers active at call time. A ticker added
// concurrently may or may not appear; snapshots are eventually
// consistent, not linearizable.
func (r *Registry) Snapshot() []market.Ticker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Ticker, 0, len(r.tickers))
	for t := range r.tickers {
		out = append(out, t)
	}
	return out
}

// Len reports the number of active tickers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickers)
}
