package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FlagStatus string

const (
	FlagPending  FlagStatus = "pending"
	FlagResolved FlagStatus = "resolved"
)

// FraudFlag marks a transaction for human review. RuleID is nullable: a
// flag survives the deactivation of the rule that produced it, and
// DetectedRule keeps a denormalized snapshot of the rule label.
type FraudFlag struct {
	LogID         int64     `json:"log_id" db:"log_id"`
	TransactionID int64     `json:"transaction_id" db:"transaction_id"`
	RuleID        *int64    `json:"rule_id" db:"rule_id"`
	DetectedRule  string    `json:"detected_rule" db:"detected_rule"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FraudFlagDetail joins a flag with fields from its referenced
// transaction. The transaction side is optional: a flag whose transaction
// row has gone missing still lists, with nil transaction fields.
type FraudFlagDetail struct {
	FraudFlag
	AccountID       *int64           `json:"account_id"`
	Amount          *decimal.Decimal `json:"amount"`
	TransactionTime *time.Time       `json:"transaction_time"`
}

// FraudRule is read-mostly configuration owned by the admin surface. The
// core never evaluates rules; it only reads the active set when
// presenting review options.
type FraudRule struct {
	RuleID      int64  `json:"rule_id" db:"rule_id"`
	Name        string `json:"rule_name" db:"rule_name"`
	Description string `json:"rule_description" db:"rule_description"`
	Action      string `json:"action" db:"action"`
	RiskLevel   string `json:"risk_level" db:"risk_level"`
	Precedence  int    `json:"precedence" db:"precedence"`
	Active      bool   `json:"active" db:"active"`
}
