package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/backend/internal/models"
)

func TestAccountStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAccountStore(db)

	mock.ExpectQuery("INSERT INTO accounts \\(user_id, account_number, balance, account_status, risk_level, version\\) VALUES \\(\\$1, \\$2, \\$3, \\$4, \\$5, \\$6\\) RETURNING account_id, created_at").
		WithArgs(int64(7), sqlmock.AnyArg(), decimal.Zero, "active", "low", 1).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "created_at"}).AddRow(int64(3), time.Now()))

	acct, err := store.Create(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), acct.ID)
	assert.Equal(t, models.AccountActive, acct.Status)
	assert.Equal(t, models.RiskLow, acct.RiskLevel)
	assert.Len(t, acct.AccountNumber, 10)
	assert.True(t, acct.Balance.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_GetOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAccountStore(db)
	columns := []string{"account_id", "user_id", "account_number", "balance", "account_status", "risk_level", "version", "created_at"}

	t.Run("owned account", func(t *testing.T) {
		mock.ExpectQuery("SELECT account_id, user_id, account_number, balance, account_status, risk_level, version, created_at FROM accounts WHERE account_id = \\$1 AND user_id = \\$2").
			WithArgs(int64(3), int64(7)).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(int64(3), int64(7), "0000000001", "100.00", "active", "low", 1, time.Now()))

		acct, err := store.GetOwned(context.Background(), 3, 7)
		require.NoError(t, err)
		assert.Equal(t, "100.00", acct.Balance.StringFixed(2))
	})

	t.Run("account of another user is not found", func(t *testing.T) {
		mock.ExpectQuery("FROM accounts WHERE account_id = \\$1 AND user_id = \\$2").
			WithArgs(int64(3), int64(8)).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := store.GetOwned(context.Background(), 3, 8)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountStore_updateBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAccountStore(db)

	t.Run("successful update", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, version = version \\+ 1 WHERE account_id = \\$2 AND version = \\$3").
			WithArgs(decimal.RequireFromString("40.00"), int64(1), 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := store.updateBalance(context.Background(), tx, 1, decimal.RequireFromString("40.00"), 2)
		assert.NoError(t, err)
	})

	t.Run("stale version fails as retryable", func(t *testing.T) {
		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, version = version \\+ 1 WHERE account_id = \\$2 AND version = \\$3").
			WithArgs(decimal.RequireFromString("40.00"), int64(1), 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.updateBalance(context.Background(), tx, 1, decimal.RequireFromString("40.00"), 2)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})
}

func TestAccountStore_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewAccountStore(db)

	mock.ExpectQuery("FROM accounts WHERE user_id = \\$1 ORDER BY account_id").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "user_id", "account_number", "balance", "account_status", "risk_level", "version", "created_at"}).
			AddRow(int64(1), int64(7), "0000000001", "10.00", "active", "low", 1, time.Now()).
			AddRow(int64(2), int64(7), "0000000002", "0.00", "frozen", "high", 4, time.Now()))

	accounts, err := store.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, models.AccountFrozen, accounts[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAccountNumber(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newAccountNumber()
		assert.Len(t, n, 10)
		seen[n] = true
	}
	// Collisions over 100 draws from a 10^10 space would indicate a
	// broken derivation.
	assert.Greater(t, len(seen), 95)
}
