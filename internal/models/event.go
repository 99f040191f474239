package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTradeExecuted = "TRADE_EXECUTED"
)

// TradeEvent is published to Kafka after a buy or sell has been committed
type TradeEvent struct {
	EventType     string          `json:"event_type"`
	TransactionID int64           `json:"transaction_id"`
	UserID        int64           `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Shares        int64           `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	Cash          decimal.Decimal `json:"cash"`
	Timestamp     time.Time       `json:"timestamp"`
}
