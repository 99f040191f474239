// Package portfolio keeps each user's cash balance consistent with their
// append-only ledger of buys and sells.
package portfolio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
	"go.uber.org/zap"
)

// Store is the ledger and cash persistence the engine needs
type Store interface {
	GetCash(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListTransactionsByUser(ctx context.Context, userID int64) ([]*models.Transaction, error)
	// RecordTrade applies delta to the user's cash and appends t, both or
	// neither, and returns the new balance
	RecordTrade(ctx context.Context, delta decimal.Decimal, t *models.Transaction) (decimal.Decimal, error)
}

// Quoter looks up current prices
type Quoter interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// Publisher announces committed trades
type Publisher interface {
	PublishTradeExecuted(ctx context.Context, event models.TradeEvent) error
}

// Engine validates and executes trades
type Engine struct {
	store     Store
	quoter    Quoter
	publisher Publisher
	locks     *keyedMutex
	now       func() time.Time
	logger    *zap.Logger

	publishTimeout time.Duration
}

const defaultPublishTimeout = 2 * time.Second

// NewEngine creates an engine. publisher may be nil.
func NewEngine(store Store, quoter Quoter, publisher Publisher, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		quoter:    quoter,
		publisher: publisher,
		locks:     newKeyedMutex(),
		now:       time.Now,
		logger:    logger,

		publishTimeout: defaultPublishTimeout,
	}
}

// ParseShares parses a share count from form input
func ParseShares(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperror.ErrInvalidShares
	}
	return n, nil
}

// ComputePositions derives the user's open positions from the ledger
func (e *Engine) ComputePositions(ctx context.Context, userID int64) (Positions, error) {
	ledger, err := e.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Fold(ledger), nil
}

// ExecuteBuy buys shares at the current quote
func (e *Engine) ExecuteBuy(ctx context.Context, userID int64, symbol string, shares int64) error {
	if shares <= 0 {
		return apperror.ErrInvalidShares
	}

	q, err := e.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	cost := q.Price.Mul(decimal.NewFromInt(shares))

	unlock := e.locks.Lock(userID)
	defer unlock()

	cash, err := e.store.GetCash(ctx, userID)
	if err != nil {
		return err
	}
	if cash.Sub(cost).IsNegative() {
		return apperror.ErrInsufficientFunds
	}

	t := &models.Transaction{
		UserID:     userID,
		Symbol:     q.Symbol,
		Shares:     shares,
		Price:      q.Price,
		ExecutedAt: e.timestamp(),
	}
	return e.commit(ctx, cost.Neg(), t)
}

// ExecuteSell sells held shares at a price quoted at sell time
func (e *Engine) ExecuteSell(ctx context.Context, userID int64, symbol string, shares int64) error {
	if shares <= 0 {
		return apperror.ErrInvalidShares
	}
	symbol = models.NormalizeSymbol(symbol)

	unlock := e.locks.Lock(userID)
	defer unlock()

	positions, err := e.ComputePositions(ctx, userID)
	if err != nil {
		return err
	}
	if positions[symbol] < shares {
		return apperror.ErrInsufficientShares
	}

	q, err := e.lookup(ctx, symbol)
	if err != nil {
		return err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	t := &models.Transaction{
		UserID:     userID,
		Symbol:     symbol,
		Shares:     -shares,
		Price:      q.Price,
		ExecutedAt: e.timestamp(),
	}
	return e.commit(ctx, proceeds, t)
}

// Quote looks up a symbol for display
func (e *Engine) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return e.lookup(ctx, symbol)
}

func (e *Engine) lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	q, err := e.quoter.Lookup(ctx, symbol)
	if err == nil {
		err = roundPrice(q)
	}
	if err != nil {
		e.logger.Info("quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, fmt.Errorf("lookup %q: %w", symbol, apperror.ErrInvalidSymbol)
	}
	return q, nil
}

// roundPrice rounds q.Price to the stored scale so cost and proceeds are
// computed from exactly the price the ledger keeps
func roundPrice(q *models.Quote) error {
	price := q.Price.Round(models.PriceScale)
	if !price.IsPositive() {
		return fmt.Errorf("price %s rounds to %s", q.Price, price)
	}
	q.Price = price
	return nil
}

func (e *Engine) commit(ctx context.Context, delta decimal.Decimal, t *models.Transaction) error {
	cash, err := e.store.RecordTrade(ctx, delta, t)
	if err != nil {
		e.logger.Error("failed to record trade",
			zap.Int64("user_id", t.UserID),
			zap.String("symbol", t.Symbol),
			zap.Int64("shares", t.Shares),
			zap.Error(err),
		)
		return err
	}

	e.logger.Info("trade executed",
		zap.Int64("user_id", t.UserID),
		zap.Int64("transaction_id", t.ID),
		zap.String("symbol", t.Symbol),
		zap.Int64("shares", t.Shares),
		zap.String("price", t.Price.String()),
		zap.String("cash", cash.String()),
	)
	e.publish(ctx, t, cash)
	return nil
}

func (e *Engine) publish(ctx context.Context, t *models.Transaction, cash decimal.Decimal) {
	if e.publisher == nil {
		return
	}
	event := models.TradeEvent{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Symbol:        t.Symbol,
		Side:          t.TradeType(),
		Shares:        t.Shares,
		Price:         t.Price,
		Cash:          cash,
		Timestamp:     t.ExecutedAt,
	}
	// the trade is committed: publish even if the request is gone, but bounded
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.publishTimeout)
	defer cancel()
	if err := e.publisher.PublishTradeExecuted(ctx, event); err != nil {
		e.logger.Warn("failed to publish trade event", zap.Int64("transaction_id", t.ID), zap.Error(err))
	}
}

func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Second)
}
