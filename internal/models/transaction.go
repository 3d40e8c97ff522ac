package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxTransferOut TransactionType = "transfer_out"
	TxTransferIn  TransactionType = "transfer_in"
)

// Transaction is one immutable journal entry. Entries are never updated
// or deleted after insertion; the sum of an account's entries reconciles
// to its current balance.
type Transaction struct {
	ID        int64           `json:"transaction_id" db:"transaction_id"`
	AccountID int64           `json:"account_id" db:"account_id"`
	Type      TransactionType `json:"transaction_type" db:"transaction_type"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Time      time.Time       `json:"transaction_time" db:"transaction_time"`
	Details   string          `json:"details" db:"details"`
}
