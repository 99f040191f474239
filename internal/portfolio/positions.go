package portfolio

import (
	"sort"

	"github.com/trogers1052/paper-trader/internal/models"
)

// Positions maps a symbol to its net share count. Closed positions are absent.
type Positions map[string]int64

// Fold sums signed shares per symbol in one pass over the ledger. A symbol is
// dropped the moment its net reaches zero and re-added if it is reopened, so
// the result never holds a zero entry.
func Fold(ledger []*models.Transaction) Positions {
	p := make(Positions)
	for _, t := range ledger {
		if n := p[t.Symbol] + t.Shares; n == 0 {
			delete(p, t.Symbol)
		} else {
			p[t.Symbol] = n
		}
	}
	return p
}

// Symbols returns the open symbols in alphabetical order
func (p Positions) Symbols() []string {
	symbols := make([]string, 0, len(p))
	for s := range p {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
