package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

const uniqueViolation = "23505"

// CreateUser inserts a new user with the given password hash and starting cash
func (db *DB) CreateUser(ctx context.Context, username, hash string, cash decimal.Decimal) (*models.User, error) {
	query := `
		INSERT INTO users (username, hash, cash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	now := time.Now().UTC().Truncate(time.Second)
	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		Cash:         cash,
		CreatedAt:    now,
	}

	err := db.conn.QueryRowContext(ctx, query, username, hash, cash, now).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.ErrDuplicateUsername
		}
		return nil, apperror.Persistence("create user", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by exact, case-sensitive username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, hash, cash, created_at
		FROM users
		WHERE username = $1
	`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, username))
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, hash, cash, created_at
		FROM users
		WHERE id = $1
	`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, id))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Persistence("get user", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetCash returns the user's cash balance
func (db *DB) GetCash(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := db.conn.QueryRowContext(ctx, `SELECT cash FROM users WHERE id = $1`, userID).Scan(&cash)
	if err == sql.ErrNoRows {
		return decimal.Zero, apperror.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, apperror.Persistence("get cash", err)
	}
	return cash, nil
}

// SetCash overwrites the user's cash balance. Callers are responsible for
// keeping it non-negative.
func (db *DB) SetCash(ctx context.Context, userID int64, cash decimal.Decimal) error {
	result, err := db.conn.ExecContext(ctx, `UPDATE users SET cash = $2 WHERE id = $1`, userID, cash)
	if err != nil {
		return apperror.Persistence("set cash", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}
