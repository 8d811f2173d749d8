package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockfeed/hub"
	"github.com/rustyeddy/stockfeed/market"
	"github.com/rustyeddy/stockfeed/registry"
	"github.com/rustyeddy/stockfeed/resolver"
)

type fakeStore struct {
	latest    map[market.Ticker]market.PriceRecord
	latestErr error
}

func (f *fakeStore) Latest(ctx context.Context, t market.Ticker) (market.PriceRecord, error) {
	if f.latestErr != nil {
		return market.PriceRecord{}, f.latestErr
	}
	rec, ok := f.latest[t]
	if !ok {
		return market.PriceRecord{}, market.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) Append(ctx context.Context, rec market.PriceRecord) error { return nil }

func (f *fakeStore) History(ctx context.Context, t market.Ticker, limit int) ([]market.PriceRecord, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeProvider struct{}

func (f *fakeProvider) GetQuote(ctx context.Context, t market.Ticker) (market.Quote, error) {
	return market.Quote{}, market.ErrNotFound
}

func newTestServer(t *testing.T, fs *fakeStore) (*Server, *hub.Hub) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	res := resolver.New(fs, &fakeProvider{}, registry.New(), log)
	h := hub.New(log)
	return New(res, h, log), h
}

func TestQuoteEndpoint(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{latest: map[market.Ticker]market.PriceRecord{
		"AAPL": {
			ID:     "01TEST",
			Ticker: "AAPL",
			Price:  decimal.RequireFromString("150.25"),
			Time:   time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		},
	}}
	srv, _ := newTestServer(t, fs)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/quote/AAPL", nil)
	srv.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp quoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "150.25", resp.Price)
}

func TestQuoteEndpointNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeStore{latest: map[market.Ticker]market.PriceRecord{}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/quote/UNKNOWN", nil)
	srv.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteEndpointStoreError(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeStore{latestErr: errors.New("database is locked")})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/quote/AAPL", nil)
	srv.ServeHTTP(w, r)

	// Infrastructure failure, not absence.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeStore{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebsocketJoinAndReceive(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t, &fakeStore{})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(joinRequest{Action: actionJoin, Ticker: "AAPL"}))

	// Wait until the read pump has registered the subscription.
	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers("AAPL") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Publish("AAPL", market.Quote{Ticker: "AAPL", Price: decimal.RequireFromString("151.50")})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update hub.PriceUpdate
	require.NoError(t, conn.ReadJSON(&update))

	assert.Equal(t, hub.TypePriceUpdate, update.Type)
	assert.Equal(t, "AAPL", update.Ticker)
	assert.Equal(t, "151.50", update.Price)
}

func TestWebsocketTopicIsolation(t *testing.T) {
	t.Parallel()

	srv, h := newTestServer(t, &fakeStore{})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(joinRequest{Action: actionJoin, Ticker: "A"}))

	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers("A") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.Publish("B", market.Quote{Ticker: "B", Price: decimal.RequireFromString("1.00")})
	h.Publish("A", market.Quote{Ticker: "A", Price: decimal.RequireFromString("2.00")})

	// The first frame received must be the topic A update; the topic B
	// publish must never reach this connection.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update hub.PriceUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "A", update.Ticker)
}
