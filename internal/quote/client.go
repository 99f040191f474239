// Package quote looks up current prices from an IEX-style market data API.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

// Paths locate the quote fields inside the provider's JSON payload
type Paths struct {
	Symbol string
	Name   string
	Price  string
}

// DefaultPaths match the IEX Cloud quote endpoint
var DefaultPaths = Paths{
	Symbol: "$.symbol",
	Name:   "$.companyName",
	Price:  "$.latestPrice",
}

// Client fetches quotes with a single attempt per lookup
type Client struct {
	baseURL string
	apiKey  string
	paths   Paths
	http    *http.Client
}

// NewClient creates a quote client. A zero timeout falls back to five seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration, paths Paths) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if paths.Symbol == "" {
		paths.Symbol = DefaultPaths.Symbol
	}
	if paths.Name == "" {
		paths.Name = DefaultPaths.Name
	}
	if paths.Price == "" {
		paths.Price = DefaultPaths.Price
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		paths:   paths,
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup returns the current quote for symbol. Every failure, including an
// unknown symbol, is an upstream apperror.
func (c *Client) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperror.Upstream(fmt.Errorf("empty symbol"))
	}

	addr := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, apperror.Upstream(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Upstream(fmt.Errorf("failed to fetch %s: %w", symbol, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Upstream(fmt.Errorf("quote for %s: %s", symbol, resp.Status))
	}

	var payload any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, apperror.Upstream(fmt.Errorf("failed to decode quote for %s: %w", symbol, err))
	}

	return c.parse(symbol, payload)
}

func (c *Client) parse(symbol string, payload any) (*models.Quote, error) {
	name, err := c.stringAt(c.paths.Name, payload)
	if err != nil || name == "" {
		return nil, apperror.Upstream(fmt.Errorf("quote for %s has no name", symbol))
	}

	price, err := c.decimalAt(c.paths.Price, payload)
	if err != nil {
		return nil, apperror.Upstream(fmt.Errorf("quote for %s: %w", symbol, err))
	}
	if !price.IsPositive() {
		return nil, apperror.Upstream(fmt.Errorf("quote for %s has non-positive price %s", symbol, price))
	}

	if s, err := c.stringAt(c.paths.Symbol, payload); err == nil && s != "" {
		symbol = models.NormalizeSymbol(s)
	}

	return &models.Quote{Symbol: symbol, Name: name, Price: price}, nil
}

// first unwraps jsonpath results that come back as a one element list
func first(path string, payload any) (any, error) {
	v, err := jsonpath.Get(path, payload)
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("%s: no match", path)
		}
		v = list[0]
	}
	return v, nil
}

func (c *Client) stringAt(path string, payload any) (string, error) {
	v, err := first(path, payload)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: not a string", path)
	}
	return s, nil
}

func (c *Client) decimalAt(path string, payload any) (decimal.Decimal, error) {
	v, err := first(path, payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("missing price: %w", err)
	}
	switch p := v.(type) {
	case json.Number:
		return decimal.NewFromString(p.String())
	case string:
		return decimal.NewFromString(p)
	case nil:
		return decimal.Zero, fmt.Errorf("%s is null", path)
	default:
		return decimal.Zero, fmt.Errorf("%s: unexpected type %T", path, v)
	}
}
