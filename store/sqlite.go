package store

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stockfeed/market"
	"github.com/rustyeddy/stockfeed/pkg/id"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Append inserts one immutable price row. When the record carries no ID
// a fresh ULID is assigned, so rows written in the same instant still
// order by insertion.
func (s *SQLite) Append(ctx context.Context, rec market.PriceRecord) error {
	recID := rec.ID
	if recID == "" {
		recID = id.New()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (id, ticker, price, time)
		VALUES (?, ?, ?, ?)`,
		recID, rec.Ticker, rec.Price.String(), rec.Time.UTC(),
	)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
