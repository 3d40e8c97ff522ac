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

func TestTransactionJournal_appendEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	journal := NewTransactionJournal(db)

	mock.ExpectBegin()
	tx, _ := db.Begin()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := &models.Transaction{AccountID: 1, Type: models.TxTransferOut, Amount: decimal.RequireFromString("60.00"), Details: "transfer to 0000000002"}
	in := &models.Transaction{AccountID: 2, Type: models.TxTransferIn, Amount: decimal.RequireFromString("60.00"), Details: "transfer from 0000000001"}

	mock.ExpectQuery(appendJournalQuery).
		WithArgs(int64(1), "transfer_out", out.Amount, at, out.Details).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(int64(41)))
	mock.ExpectQuery(appendJournalQuery).
		WithArgs(int64(2), "transfer_in", in.Amount, at, in.Details).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(int64(42)))

	require.NoError(t, journal.appendEntries(context.Background(), tx, at, out, in))
	assert.Equal(t, int64(41), out.ID)
	assert.Equal(t, int64(42), in.ID)
	assert.True(t, out.Time.Equal(at))
	assert.True(t, in.Time.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionJournal_ListByAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	journal := NewTransactionJournal(db)

	earlier := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM transactions WHERE account_id = \\$1 ORDER BY transaction_time, transaction_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_id", "transaction_type", "amount", "transaction_time", "details"}).
			AddRow(int64(1), int64(1), "deposit", "100.00", earlier, "deposit").
			AddRow(int64(2), int64(1), "withdrawal", "40.00", later, "withdrawal"))

	entries, err := journal.ListByAccount(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TxDeposit, entries[0].Type)
	assert.Equal(t, models.TxWithdrawal, entries[1].Type)

	// Audit ordering is monotonically non-decreasing per account.
	assert.False(t, entries[1].Time.Before(entries[0].Time))

	// The journal reconciles to the balance it produced: deposits and
	// transfers in minus withdrawals and transfers out.
	balance := decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case models.TxDeposit, models.TxTransferIn:
			balance = balance.Add(e.Amount)
		case models.TxWithdrawal, models.TxTransferOut:
			balance = balance.Sub(e.Amount)
		}
	}
	assert.Equal(t, "60.00", balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionJournal_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	journal := NewTransactionJournal(db)

	mock.ExpectQuery("FROM transactions t JOIN accounts a ON a.account_id = t.account_id WHERE a.user_id = \\$1 ORDER BY t.transaction_time DESC, t.transaction_id DESC").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "account_id", "transaction_type", "amount", "transaction_time", "details"}).
			AddRow(int64(2), int64(1), "withdrawal", "40.00", time.Now(), "withdrawal"))

	entries, err := journal.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
