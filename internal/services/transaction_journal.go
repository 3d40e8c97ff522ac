package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fraudshield/backend/internal/models"
)

// TransactionJournal owns the append-only transactions table. It exposes
// no update or delete path; entries are immutable once committed.
type TransactionJournal struct {
	db *sql.DB
}

func NewTransactionJournal(db *sql.DB) *TransactionJournal {
	return &TransactionJournal{db: db}
}

// appendEntries inserts journal rows inside the caller's transaction.
// Every entry of one atomic unit shares a single commit timestamp, which
// keeps per-account ordering monotonic and pairs the two transfer legs.
// IDs are assigned by the database and written back into the entries.
func (j *TransactionJournal) appendEntries(ctx context.Context, tx *sql.Tx, at time.Time, entries ...*models.Transaction) error {
	for _, e := range entries {
		e.Time = at
		err := tx.QueryRowContext(ctx, `
			INSERT INTO transactions (account_id, transaction_type, amount, transaction_time, details)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING transaction_id`,
			e.AccountID, e.Type, e.Amount, e.Time, e.Details,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("%w: journal append: %v", models.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// ListByAccount returns an account's entries in audit order: commit time
// ascending, entry id breaking ties.
func (j *TransactionJournal) ListByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return j.list(ctx, `
		SELECT transaction_id, account_id, transaction_type, amount, transaction_time, details
		FROM transactions
		WHERE account_id = $1
		ORDER BY transaction_time, transaction_id`,
		accountID)
}

// ListByUser returns entries across all of a user's accounts, most
// recent first.
func (j *TransactionJournal) ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return j.list(ctx, `
		SELECT t.transaction_id, t.account_id, t.transaction_type, t.amount, t.transaction_time, t.details
		FROM transactions t
		JOIN accounts a ON a.account_id = t.account_id
		WHERE a.user_id = $1
		ORDER BY t.transaction_time DESC, t.transaction_id DESC`,
		userID)
}

func (j *TransactionJournal) list(ctx context.Context, query string, arg any) ([]models.Transaction, error) {
	rows, err := j.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	entries := []models.Transaction{}
	for rows.Next() {
		var e models.Transaction
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount, &e.Time, &e.Details); err != nil {
			return nil, storeErr(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}
