package services

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fraudshield/backend/internal/models"
)

// AccountStore is the exclusive owner of account rows. Balance writes go
// through updateBalance, which combines the row lock held by the caller's
// transaction with an optimistic version check.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create opens a fresh zero-balance account for userID.
func (s *AccountStore) Create(ctx context.Context, userID int64) (*models.Account, error) {
	acct := &models.Account{
		UserID:        userID,
		AccountNumber: newAccountNumber(),
		Balance:       decimal.Zero,
		Status:        models.AccountActive,
		RiskLevel:     models.RiskLow,
		Version:       1,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (user_id, account_number, balance, account_status, risk_level, version)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING account_id, created_at`,
		acct.UserID, acct.AccountNumber, acct.Balance, acct.Status, acct.RiskLevel, acct.Version,
	).Scan(&acct.ID, &acct.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return acct, nil
}

// GetOwned fetches an account only if it belongs to userID. A missing or
// foreign account is indistinguishable to the caller.
func (s *AccountStore) GetOwned(ctx context.Context, accountID, userID int64) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, user_id, account_number, balance, account_status, risk_level, version, created_at
		FROM accounts
		WHERE account_id = $1 AND user_id = $2`,
		accountID, userID,
	).Scan(&acct.ID, &acct.UserID, &acct.AccountNumber, &acct.Balance,
		&acct.Status, &acct.RiskLevel, &acct.Version, &acct.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &acct, nil
}

// ListByUser returns every account owned by userID, oldest first.
func (s *AccountStore) ListByUser(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, user_id, account_number, balance, account_status, risk_level, version, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY account_id`,
		userID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var acct models.Account
		if err := rows.Scan(&acct.ID, &acct.UserID, &acct.AccountNumber, &acct.Balance,
			&acct.Status, &acct.RiskLevel, &acct.Version, &acct.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return accounts, nil
}

// lockForUpdate reads an account under FOR UPDATE inside tx. Callers
// touching more than one account must lock in ascending account-id order
// to avoid deadlocks between opposing transfers.
func (s *AccountStore) lockForUpdate(ctx context.Context, tx *sql.Tx, accountID int64) (*models.Account, error) {
	var acct models.Account
	err := tx.QueryRowContext(ctx, `
		SELECT account_id, user_id, account_number, balance, account_status, version
		FROM accounts
		WHERE account_id = $1
		FOR UPDATE`,
		accountID,
	).Scan(&acct.ID, &acct.UserID, &acct.AccountNumber, &acct.Balance, &acct.Status, &acct.Version)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return &acct, nil
}

// updateBalance writes a new balance guarded by the version the caller
// read under lock. A zero row count means someone slipped past the lock
// discipline; the whole transaction rolls back and the caller may retry.
func (s *AccountStore) updateBalance(ctx context.Context, tx *sql.Tx, accountID int64, newBalance decimal.Decimal, version int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1
		WHERE account_id = $2 AND version = $3`,
		newBalance, accountID, version)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: optimistic lock failed for account %d", models.ErrStoreUnavailable, accountID)
	}
	return nil
}

// setStatus stamps a review-driven status onto an account inside tx.
func (s *AccountStore) setStatus(ctx context.Context, tx *sql.Tx, accountID int64, status models.AccountStatus) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET account_status = $1
		WHERE account_id = $2`,
		status, accountID)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// newAccountNumber derives a 10-digit displayable account number from a
// fresh UUID; uniqueness is enforced by the accounts table constraint.
func newAccountNumber() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % 10_000_000_000
	return fmt.Sprintf("%010d", n)
}
