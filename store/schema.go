// store/schema.go
package store

const Schema = `
CREATE TABLE IF NOT EXISTS prices (
	id TEXT PRIMARY KEY,
	ticker VARCHAR(10) NOT NULL,
	price DECIMAL(12,6) NOT NULL,
	time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_prices_ticker ON prices(ticker);
CREATE INDEX IF NOT EXISTS idx_prices_time ON prices(time);
`
