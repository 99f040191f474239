package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

const insertTransaction = `
	INSERT INTO transactions (user_id, symbol, shares, price, executed_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
`

// AppendTransaction appends a ledger entry. It enforces no business rules.
func (db *DB) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	err := db.conn.QueryRowContext(ctx, insertTransaction,
		t.UserID, t.Symbol, t.Shares, t.Price, t.ExecutedAt,
	).Scan(&t.ID)
	if err != nil {
		return apperror.Persistence("append transaction", err)
	}
	return nil
}

// ListTransactionsByUser returns the user's ledger in insertion order
func (db *DB) ListTransactionsByUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, shares, price, executed_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id
	`
	return db.scanTransactions(db.conn.QueryContext(ctx, query, userID))
}

func (db *DB) scanTransactions(rows *sql.Rows, err error) ([]*models.Transaction, error) {
	if err != nil {
		return nil, apperror.Persistence("query transactions", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Shares, &t.Price, &t.ExecutedAt); err != nil {
			return nil, apperror.Persistence("scan transaction", err)
		}
		t.ExecutedAt = t.ExecutedAt.UTC()
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Persistence("iterate transactions", err)
	}

	return transactions, nil
}

// RecordTrade applies a cash delta and appends the matching ledger entry as
// one unit of work. The user row is locked for the duration, and a delta that
// would take cash below zero is refused. On any failure neither write is
// kept. It returns the new cash balance.
func (db *DB) RecordTrade(ctx context.Context, delta decimal.Decimal, t *models.Transaction) (decimal.Decimal, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, apperror.Persistence("begin transaction", err)
	}
	defer tx.Rollback()

	var cash decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT cash FROM users WHERE id = $1 FOR UPDATE`, t.UserID).Scan(&cash)
	if err == sql.ErrNoRows {
		return decimal.Zero, apperror.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, apperror.Persistence("lock user", err)
	}

	newCash := cash.Add(delta)
	if newCash.IsNegative() {
		return decimal.Zero, apperror.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET cash = $2 WHERE id = $1`, t.UserID, newCash); err != nil {
		return decimal.Zero, apperror.Persistence("update cash", err)
	}

	err = tx.QueryRowContext(ctx, insertTransaction,
		t.UserID, t.Symbol, t.Shares, t.Price, t.ExecutedAt,
	).Scan(&t.ID)
	if err != nil {
		return decimal.Zero, apperror.Persistence("append transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, apperror.Persistence("commit trade", fmt.Errorf("user %d: %w", t.UserID, err))
	}
	return newCash, nil
}
