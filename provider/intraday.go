package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/stockfeed/market"
)

const (
	intradayFunction = "TIME_SERIES_INTRADAY"
	intradayInterval = "15min"
)

// The upstream response is a metadata block plus a time-indexed map of
// interval entries keyed "Time Series (15min)". OHLCV values arrive as
// decimal-formatted strings.
type intradayEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type intradayResp struct {
	Series map[string]intradayEntry
}

func (ir *intradayResp) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, val := range raw {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		return json.Unmarshal(val, &ir.Series)
	}
	return nil
}

// fetchIntraday issues one upstream request and extracts the "high" of
// the most recent interval. An empty series means the symbol has no
// data and yields market.ErrNotFound.
func (c *Client) fetchIntraday(ctx context.Context, ticker market.Ticker) (market.Quote, error) {
	body, err := c.get(ctx, map[string]string{
		"function": intradayFunction,
		"symbol":   ticker,
		"interval": intradayInterval,
	})
	if err != nil {
		return market.Quote{}, err
	}
	defer body.Close()

	var resp intradayResp
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return market.Quote{}, fmt.Errorf("provider: bad json for %s: %w", ticker, err)
	}

	if len(resp.Series) == 0 {
		return market.Quote{}, market.ErrNotFound
	}

	// Interval keys are "2006-01-02 15:04:05" timestamps, so the
	// lexicographically greatest key is the most recent interval.
	latest := ""
	for key := range resp.Series {
		if key > latest {
			latest = key
		}
	}

	high, err := decimal.NewFromString(resp.Series[latest].High)
	if err != nil {
		return market.Quote{}, fmt.Errorf("provider: bad high %q for %s: %w",
			resp.Series[latest].High, ticker, err)
	}

	return market.Quote{Ticker: ticker, Price: high}, nil
}
