// Package provider fetches quotes from the upstream intraday price API
// and fronts it with a TTL cache. Concurrent cache misses for the same
// ticker are coalesced into a single upstream request.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	BaseURL string // e.g. https://www.alphavantage.co/query
	APIKey  string
	HTTP    *http.Client
}

func (c *Client) get(ctx context.Context, opts map[string]string) (io.ReadCloser, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("provider: missing base url")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("provider: missing api key")
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range opts {
		q.Set(k, v)
	}
	q.Set("apikey", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, fmt.Errorf("provider http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}
