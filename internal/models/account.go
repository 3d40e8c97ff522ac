package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is driven exclusively by the fraud review workflow and
// account creation; nothing else writes it.
type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountFlagged AccountStatus = "flagged"
	AccountFrozen  AccountStatus = "frozen"
	AccountClosed  AccountStatus = "closed"
)

// Valid reports whether s is one of the accepted account statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountFlagged, AccountFrozen, AccountClosed:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Account represents a customer ledger account. Balance is a fixed-point
// decimal backed by a Postgres numeric column and is never negative.
type Account struct {
	ID            int64           `json:"account_id" db:"account_id"`
	UserID        int64           `json:"user_id" db:"user_id"`
	AccountNumber string          `json:"account_number" db:"account_number"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	Status        AccountStatus   `json:"account_status" db:"account_status"`
	RiskLevel     RiskLevel       `json:"risk_level" db:"risk_level"`
	Version       int             `json:"-" db:"version"` // for optimistic locking
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
