package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade type constants
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Transaction is one immutable ledger entry. Shares is signed: positive for a
// buy, negative for a sell.
type Transaction struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// TradeType reports BUY or SELL from the sign of Shares
func (t *Transaction) TradeType() string {
	if t.Shares < 0 {
		return TradeTypeSell
	}
	return TradeTypeBuy
}

// Total returns the absolute cash amount moved by the transaction
func (t *Transaction) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares)).Abs()
}
