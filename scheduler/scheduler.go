// Package scheduler drives the periodic broadcast loop: every tick it
// re-derives a price for each active ticker from stored state and
// publishes it to that ticker's topic.
package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stockfeed/market"
	"github.com/rustyeddy/stockfeed/registry"
	"github.com/rustyeddy/stockfeed/store"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultMaxChange = 0.02
)

// Publisher is the fan-out surface the scheduler publishes to.
type Publisher interface {
	Publish(topic string, quote market.Quote)
}

type Scheduler struct {
	store    store.Store
	registry *registry.Registry
	pub      Publisher
	log      *logrus.Logger

	interval  time.Duration
	maxChange float64

	// factor returns a uniform value in [-1, 1]; it is scaled by
	// maxChange to produce the per-tick price drift. Injectable so
	// tests can pin the walk.
	factor func() float64
}

func New(s store.Store, r *registry.Registry, pub Publisher, interval time.Duration, maxChange float64, log *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxChange <= 0 {
		maxChange = DefaultMaxChange
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		store:     s,
		registry:  r,
		pub:       pub,
		log:       log,
		interval:  interval,
		maxChange: maxChange,
		factor:    func() float64 { return rand.Float64()*2 - 1 },
	}
}

// Run loops until ctx is cancelled. The inter-tick wait observes
// cancellation immediately; an in-progress tick finishes its current
// ticker but starts no new one.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("broadcast scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick walks the registry snapshot sequentially. A failure on one
// ticker is logged and must never abort the tick or the loop.
func (s *Scheduler) tick(ctx context.Context) {
	for _, t := range s.registry.Snapshot() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.broadcastTicker(ctx, t); err != nil {
			s.log.WithField("ticker", t).WithError(err).Error("broadcast failed")
		}
	}
}

// broadcastTicker re-reads the latest stored price (not the previously
// broadcast value), applies a bounded random walk step and publishes
// the result. The new price is never written back to the store: the
// persisted history only grows through the resolver's fetch path.
func (s *Scheduler) broadcastTicker(ctx context.Context, t market.Ticker) error {
	rec, err := s.store.Latest(ctx, t)
	if errors.Is(err, market.ErrNotFound) {
		// Registered but no stored price yet; skip this tick.
		return nil
	}
	if err != nil {
		return err
	}

	s.pub.Publish(t, market.Quote{Ticker: t, Price: s.nextPrice(rec.Price)})
	return nil
}

func (s *Scheduler) nextPrice(current decimal.Decimal) decimal.Decimal {
	f := s.factor() * s.maxChange
	next := current.Mul(decimal.NewFromFloat(1 + f))
	if next.IsNegative() {
		next = decimal.Zero
	}
	return next.Round(2)
}
