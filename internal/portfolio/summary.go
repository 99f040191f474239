package portfolio

import (
	"context"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

// Summary values every open position at the current quote and adds cash
func (e *Engine) Summary(ctx context.Context, userID int64) (*models.PortfolioSummary, error) {
	positions, err := e.ComputePositions(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]models.Holding, 0, len(positions))
	total := decimal.Zero
	for _, symbol := range positions.Symbols() {
		q, err := e.quoter.Lookup(ctx, symbol)
		if err == nil {
			err = roundPrice(q)
		}
		if err != nil {
			return nil, apperror.Upstream(err)
		}
		shares := positions[symbol]
		value := q.Price.Mul(decimal.NewFromInt(shares))
		total = total.Add(value)

		holdings = append(holdings, models.Holding{
			Symbol:       symbol,
			Name:         q.Name,
			Shares:       shares,
			Price:        q.Price,
			Value:        value,
			PriceDisplay: USD(q.Price),
			ValueDisplay: USD(value),
		})
	}

	cash, err := e.store.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}
	total = total.Add(cash)

	return &models.PortfolioSummary{
		Holdings:     holdings,
		Cash:         cash,
		Total:        total,
		CashDisplay:  USD(cash),
		TotalDisplay: USD(total),
	}, nil
}

// History returns the user's ledger in the order it was written
func (e *Engine) History(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	return e.store.ListTransactionsByUser(ctx, userID)
}

// SellableSymbols lists the symbols the user currently holds
func (e *Engine) SellableSymbols(ctx context.Context, userID int64) ([]string, error) {
	positions, err := e.ComputePositions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return positions.Symbols(), nil
}

// USD formats an amount as dollars, rounded half away from zero to cents
func USD(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
