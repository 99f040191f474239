package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is a price looked up from the market data provider. It is valid only
// for the request that fetched it and is never persisted.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// PriceScale is the number of decimal places prices and cash are stored with
const PriceScale = 4

// NormalizeSymbol trims and uppercases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
