package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/paper-trader/internal/apperror"
	"github.com/trogers1052/paper-trader/internal/models"
)

func TestTransactionsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()
	executedAt := time.Date(2026, 1, 5, 18, 19, 29, 0, time.UTC)

	t.Run("AppendTransaction and ListTransactionsByUser keep insertion order", func(t *testing.T) {
		testDB.TruncateAll(t)

		u := testDB.CreateTestUser(t, "alice", decimal.NewFromInt(10000))
		other := testDB.CreateTestUser(t, "bob", decimal.NewFromInt(10000))

		entries := []*models.Transaction{
			{UserID: u.ID, Symbol: "MSFT", Shares: 5, Price: decimal.NewFromFloat(370.00), ExecutedAt: executedAt},
			{UserID: other.ID, Symbol: "AAPL", Shares: 1, Price: decimal.NewFromFloat(180.00), ExecutedAt: executedAt},
			{UserID: u.ID, Symbol: "AAPL", Shares: 3, Price: decimal.NewFromFloat(181.25), ExecutedAt: executedAt},
			{UserID: u.ID, Symbol: "MSFT", Shares: -2, Price: decimal.NewFromFloat(385.00), ExecutedAt: executedAt.Add(time.Hour)},
		}
		for _, e := range entries {
			require.NoError(t, testDB.AppendTransaction(ctx, e))
			assert.NotZero(t, e.ID)
		}

		got, err := testDB.ListTransactionsByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "MSFT", got[0].Symbol)
		assert.Equal(t, "AAPL", got[1].Symbol)
		assert.Equal(t, int64(-2), got[2].Shares)
		assert.True(t, decimal.NewFromFloat(181.25).Equal(got[1].Price))
		assert.True(t, executedAt.Add(time.Hour).Equal(got[2].ExecutedAt))
	})

	t.Run("ListTransactionsByUser returns empty for new user", func(t *testing.T) {
		testDB.TruncateAll(t)

		u := testDB.CreateTestUser(t, "carol", decimal.NewFromInt(10000))
		got, err := testDB.ListTransactionsByUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("RecordTrade updates cash and appends entry", func(t *testing.T) {
		testDB.TruncateAll(t)

		u := testDB.CreateTestUser(t, "dave", decimal.NewFromInt(10000))
		entry := &models.Transaction{UserID: u.ID, Symbol: "AAA", Shares: 10, Price: decimal.NewFromInt(100), ExecutedAt: executedAt}

		cash, err := testDB.RecordTrade(ctx, decimal.NewFromInt(-1000), entry)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(9000).Equal(cash))
		assert.NotZero(t, entry.ID)

		stored, err := testDB.GetCash(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(9000).Equal(stored))

		got, err := testDB.ListTransactionsByUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("RecordTrade refuses negative cash and keeps nothing", func(t *testing.T) {
		testDB.TruncateAll(t)

		u := testDB.CreateTestUser(t, "erin", decimal.NewFromInt(500))
		entry := &models.Transaction{UserID: u.ID, Symbol: "AAA", Shares: 10, Price: decimal.NewFromInt(100), ExecutedAt: executedAt}

		_, err := testDB.RecordTrade(ctx, decimal.NewFromInt(-1000), entry)
		assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)

		stored, err := testDB.GetCash(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(stored))

		got, err := testDB.ListTransactionsByUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("RecordTrade rolls back cash when the append is rejected", func(t *testing.T) {
		testDB.TruncateAll(t)

		u := testDB.CreateTestUser(t, "frank", decimal.NewFromInt(10000))
		// price must be positive, so the insert fails after the cash update
		entry := &models.Transaction{UserID: u.ID, Symbol: "AAA", Shares: 10, Price: decimal.Zero, ExecutedAt: executedAt}

		_, err := testDB.RecordTrade(ctx, decimal.NewFromInt(-1000), entry)
		require.Error(t, err)
		assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))

		stored, err := testDB.GetCash(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10000).Equal(stored))
	})
}
