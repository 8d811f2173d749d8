// Package hub maps topics (ticker symbols) to sets of subscribed
// connections and fans published updates out to topic members.
// Delivery is best-effort, at-most-once: no acks, no retries, no
// persistence of undelivered messages.
package hub

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stockfeed/market"
)

// Conn is one subscribed connection. Send must not block the caller;
// implementations drop when they cannot deliver.
type Conn interface {
	ID() string
	Send(update PriceUpdate)
}

// PriceUpdate is the frame pushed to subscribers.
type PriceUpdate struct {
	Type   string `json:"type"`
	Ticker string `json:"ticker"`
	Price  string `json:"price"`
}

const TypePriceUpdate = "price_update"

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[Conn]struct{}
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		topics: make(map[string]map[Conn]struct{}),
		log:    log,
	}
}

// Subscribe adds a connection to a topic's member set, creating the
// topic on first use. Idempotent. There is no unsubscribe; connection
// teardown is the transport's concern and dead members are tolerated
// by the drop-on-send path.
func (h *Hub) Subscribe(c Conn, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.topics[topic]
	if !ok {
		members = make(map[Conn]struct{})
		h.topics[topic] = members
	}
	members[c] = struct{}{}

	h.log.WithFields(logrus.Fields{
		"conn":  c.ID(),
		"topic": topic,
	}).Debug("subscribed")
}

// Publish delivers a quote to every current member of the topic.
// Connections not in the topic receive nothing. Ordering within a topic
// follows generation order because the broadcast scheduler is the sole
// publisher per topic.
func (h *Hub) Publish(topic string, quote market.Quote) {
	update := PriceUpdate{
		Type:   TypePriceUpdate,
		Ticker: quote.Ticker,
		Price:  quote.Price.StringFixed(2),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.topics[topic] {
		c.Send(update)
	}
}

// Subscribers reports the current member count of a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
