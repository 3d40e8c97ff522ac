package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fraudshield/backend/internal/models"
)

// LedgerService performs every balance-affecting operation as one
// database transaction: lock the account rows in ascending id order,
// validate, write the new balances under a version check, append the
// journal entries, commit. Either everything in the unit is observable
// or nothing is.
type LedgerService struct {
	db       *sql.DB
	accounts *AccountStore
	journal  *TransactionJournal
	logger   *zap.Logger
}

func NewLedgerService(db *sql.DB, accounts *AccountStore, journal *TransactionJournal, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		db:       db,
		accounts: accounts,
		journal:  journal,
		logger:   logger,
	}
}

// Deposit credits amount to an account owned by caller and returns the
// committed journal entry.
func (s *LedgerService) Deposit(ctx context.Context, caller models.Caller, accountID int64, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.lockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.UserID != caller.UserID {
		return nil, models.ErrNotFound
	}

	if err := s.accounts.updateBalance(ctx, tx, acct.ID, acct.Balance.Add(amount), acct.Version); err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		AccountID: acct.ID,
		Type:      models.TxDeposit,
		Amount:    amount,
		Details:   "deposit",
	}
	if err := s.journal.appendEntries(ctx, tx, time.Now().UTC(), entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info("deposit committed",
		zap.Int64("account_id", acct.ID),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

// Withdraw debits amount from an account owned by caller. The balance
// check happens under the row lock, so two concurrent withdrawals can
// never both succeed past the available balance.
func (s *LedgerService) Withdraw(ctx context.Context, caller models.Caller, accountID int64, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.lockForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.UserID != caller.UserID {
		return nil, models.ErrNotFound
	}
	if acct.Balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	if err := s.accounts.updateBalance(ctx, tx, acct.ID, acct.Balance.Sub(amount), acct.Version); err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		AccountID: acct.ID,
		Type:      models.TxWithdrawal,
		Amount:    amount,
		Details:   "withdrawal",
	}
	if err := s.journal.appendEntries(ctx, tx, time.Now().UTC(), entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info("withdrawal committed",
		zap.Int64("account_id", acct.ID),
		zap.String("amount", amount.String()),
	)
	return entry, nil
}

// Transfer moves amount from a caller-owned source account to the
// destination account. Both balance updates and both journal legs commit
// together; the legs share one timestamp and a reference linking them.
// A self-transfer is allowed: it nets to zero and still records both
// legs.
func (s *LedgerService) Transfer(ctx context.Context, caller models.Caller, sourceID, destID int64, amount decimal.Decimal) ([]*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, models.ErrInvalidTransfer
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback()

	src, dst, err := s.lockPair(ctx, tx, sourceID, destID)
	if err != nil {
		return nil, err
	}

	if src.UserID != caller.UserID {
		return nil, models.ErrNotFound
	}
	if src.Balance.LessThan(amount) {
		return nil, models.ErrInsufficientFunds
	}

	if sourceID == destID {
		// Net-zero on balance; bump the version so the row still
		// participates in the optimistic check.
		if err := s.accounts.updateBalance(ctx, tx, src.ID, src.Balance, src.Version); err != nil {
			return nil, err
		}
	} else {
		if err := s.accounts.updateBalance(ctx, tx, src.ID, src.Balance.Sub(amount), src.Version); err != nil {
			return nil, err
		}
		if err := s.accounts.updateBalance(ctx, tx, dst.ID, dst.Balance.Add(amount), dst.Version); err != nil {
			return nil, err
		}
	}

	ref := uuid.NewString()
	outLeg := &models.Transaction{
		AccountID: src.ID,
		Type:      models.TxTransferOut,
		Amount:    amount,
		Details:   fmt.Sprintf("transfer to %s ref %s", dst.AccountNumber, ref),
	}
	inLeg := &models.Transaction{
		AccountID: dst.ID,
		Type:      models.TxTransferIn,
		Amount:    amount,
		Details:   fmt.Sprintf("transfer from %s ref %s", src.AccountNumber, ref),
	}
	if err := s.journal.appendEntries(ctx, tx, time.Now().UTC(), outLeg, inLeg); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info("transfer committed",
		zap.Int64("source_account_id", src.ID),
		zap.Int64("dest_account_id", dst.ID),
		zap.String("amount", amount.String()),
		zap.String("reference", ref),
	)
	return []*models.Transaction{outLeg, inLeg}, nil
}

// lockPair locks the source and destination rows in ascending account-id
// order so that opposing transfers cannot deadlock, then hands them back
// in request order. An absent account makes the transfer malformed.
func (s *LedgerService) lockPair(ctx context.Context, tx *sql.Tx, sourceID, destID int64) (src, dst *models.Account, err error) {
	if sourceID == destID {
		acct, err := s.accounts.lockForUpdate(ctx, tx, sourceID)
		if err != nil {
			return nil, nil, transferLockErr(err)
		}
		return acct, acct, nil
	}

	firstID, secondID := sourceID, destID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	first, err := s.accounts.lockForUpdate(ctx, tx, firstID)
	if err != nil {
		return nil, nil, transferLockErr(err)
	}
	second, err := s.accounts.lockForUpdate(ctx, tx, secondID)
	if err != nil {
		return nil, nil, transferLockErr(err)
	}

	if firstID == sourceID {
		return first, second, nil
	}
	return second, first, nil
}

func transferLockErr(err error) error {
	if err == models.ErrNotFound {
		return models.ErrInvalidTransfer
	}
	return err
}
