package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockfeed/market"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)

	return s, path
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	assert.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='prices'`).Scan(&name)
	assert.NoError(t, err)
	assert.Equal(t, "prices", name)
}

func TestAppendAndLatest(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	ts := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	err := s.Append(context.Background(), market.PriceRecord{
		Ticker: "AAPL",
		Price:  mustDecimal(t, "100.00"),
		Time:   ts,
	})
	require.NoError(t, err)

	rec, err := s.Latest(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID, "an ID should have been assigned")
	assert.Equal(t, "AAPL", rec.Ticker)
	assert.True(t, rec.Price.Equal(mustDecimal(t, "100.00")))
	assert.True(t, rec.Time.Equal(ts))
}

func TestLatestNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	_, err := s.Latest(context.Background(), "NOPE")
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestLatestByTimestampNotInsertOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	later := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	// Insert the later record first: latest must still be the one with
	// the greater timestamp, not the last insert.
	require.NoError(t, s.Append(context.Background(), market.PriceRecord{
		Ticker: "MSFT", Price: mustDecimal(t, "310.50"), Time: later,
	}))
	require.NoError(t, s.Append(context.Background(), market.PriceRecord{
		Ticker: "MSFT", Price: mustDecimal(t, "300.00"), Time: earlier,
	}))

	rec, err := s.Latest(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(mustDecimal(t, "310.50")))
	assert.True(t, rec.Time.Equal(later))
}

func TestLatestTieBreaksOnInsertionOrder(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	ts := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	for _, price := range []string{"100.00", "101.00", "102.00"} {
		require.NoError(t, s.Append(context.Background(), market.PriceRecord{
			Ticker: "TSLA", Price: mustDecimal(t, price), Time: ts,
		}))
	}

	rec, err := s.Latest(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(mustDecimal(t, "102.00")),
		"equal timestamps should resolve to the most recently inserted row")
}

func TestLatestIsolatedPerTicker(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	ts := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(context.Background(), market.PriceRecord{
		Ticker: "AAPL", Price: mustDecimal(t, "100.00"), Time: ts,
	}))

	_, err := s.Latest(context.Background(), "MSFT")
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestHistoryOrderAndLimit(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(context.Background(), market.PriceRecord{
			Ticker: "GOOG",
			Price:  decimal.NewFromInt(int64(100 + i)),
			Time:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := s.History(context.Background(), "GOOG", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Most recent first.
	assert.True(t, recs[0].Price.Equal(decimal.NewFromInt(104)))
	assert.True(t, recs[1].Price.Equal(decimal.NewFromInt(103)))
	assert.True(t, recs[2].Price.Equal(decimal.NewFromInt(102)))
}

func TestAppendPreservesGivenID(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	defer s.Close()

	ts := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(context.Background(), market.PriceRecord{
		ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Ticker: "AAPL",
		Price: mustDecimal(t, "1.00"), Time: ts,
	}))

	rec, err := s.Latest(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", rec.ID)
}
