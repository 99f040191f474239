package portfolio

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

// MockStore keeps cash and the ledger in memory. RecordTrade applies the delta
// without a funds check so tests observe what the engine itself enforces.
type MockStore struct {
	mu     sync.Mutex
	cash   map[int64]decimal.Decimal
	ledger []*models.Transaction
	nextID int64

	FailRecord bool
	Calls      int
}

func NewMockStore() *MockStore {
	return &MockStore{cash: make(map[int64]decimal.Decimal), nextID: 1}
}

func (m *MockStore) SetCash(userID int64, cash decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cash[userID] = cash
}

func (m *MockStore) Cash(userID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash[userID]
}

func (m *MockStore) Ledger(userID int64) []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Transaction
	for _, t := range m.ledger {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (m *MockStore) GetCash(_ context.Context, userID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	cash, ok := m.cash[userID]
	if !ok {
		return decimal.Zero, apperror.ErrUserNotFound
	}
	return cash, nil
}

func (m *MockStore) ListTransactionsByUser(_ context.Context, userID int64) ([]*models.Transaction, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return m.Ledger(userID), nil
}

func (m *MockStore) RecordTrade(_ context.Context, delta decimal.Decimal, t *models.Transaction) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.FailRecord {
		return decimal.Zero, apperror.Persistence("record trade", errors.New("disk full"))
	}
	t.ID = m.nextID
	m.nextID++
	m.cash[t.UserID] = m.cash[t.UserID].Add(delta)
	m.ledger = append(m.ledger, t)
	return m.cash[t.UserID], nil
}

// MockQuoter serves fixed prices
type MockQuoter struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  int
}

func NewMockQuoter() *MockQuoter {
	return &MockQuoter{prices: make(map[string]decimal.Decimal)}
}

func (m *MockQuoter) SetPrice(symbol string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = decimal.NewFromInt(price)
}

func (m *MockQuoter) SetPriceString(symbol, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = decimal.RequireFromString(price)
}

func (m *MockQuoter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockQuoter) Lookup(_ context.Context, symbol string) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	symbol = models.NormalizeSymbol(symbol)
	price, ok := m.prices[symbol]
	if !ok {
		return nil, apperror.Upstream(errors.New("unknown symbol"))
	}
	return &models.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: price}, nil
}

// MockPublisher records events. With block set it waits for ctx to end.
type MockPublisher struct {
	mu     sync.Mutex
	events []models.TradeEvent
	err    error
	block  bool
}

func (m *MockPublisher) PublishTradeExecuted(ctx context.Context, event models.TradeEvent) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
