package models

import (
	"github.com/shopspring/decimal"
)

// Holding is one open position valued at the current quote
type Holding struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Shares       int64           `json:"shares"`
	Price        decimal.Decimal `json:"price"`
	Value        decimal.Decimal `json:"value"`
	PriceDisplay string          `json:"price_display"`
	ValueDisplay string          `json:"value_display"`
}

// PortfolioSummary is the index view: open holdings, cash and grand total
type PortfolioSummary struct {
	Holdings     []Holding       `json:"holdings"`
	Cash         decimal.Decimal `json:"cash"`
	Total        decimal.Decimal `json:"total"`
	CashDisplay  string          `json:"cash_display"`
	TotalDisplay string          `json:"total_display"`
}
