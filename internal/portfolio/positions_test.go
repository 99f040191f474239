package portfolio

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/trogers1052/paper-trader/internal/models"
)

func tx(symbol string, shares int64) *models.Transaction {
	return &models.Transaction{Symbol: symbol, Shares: shares, Price: decimal.NewFromInt(1)}
}

func TestFold(t *testing.T) {
	ledger := []*models.Transaction{
		tx("AAA", 10),
		tx("BBB", 5),
		tx("AAA", -4),
		tx("BBB", -5),
		tx("CCC", 2),
		tx("CCC", -2),
		tx("CCC", 7),
	}

	assert.Equal(t, Positions{"AAA": 6, "CCC": 7}, Fold(ledger))
}

func TestFoldEmpty(t *testing.T) {
	assert.Equal(t, Positions{}, Fold(nil))
}

func TestFoldIgnoresOrder(t *testing.T) {
	ledger := []*models.Transaction{
		tx("AAA", 10), tx("AAA", -3), tx("BBB", 4), tx("AAA", 1), tx("BBB", -4), tx("CCC", 9),
	}
	want := Fold(ledger)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]*models.Transaction(nil), ledger...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Fold(shuffled))
	}
}

func TestSymbolsSorted(t *testing.T) {
	p := Positions{"MSFT": 1, "AAPL": 2, "GOOG": 3}
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, p.Symbols())
}
