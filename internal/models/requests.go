package models

import "github.com/shopspring/decimal"

// Request payloads are explicit typed structs with total validation;
// amount positivity is checked by the services layer so the same rule
// holds for every entry point.

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	SourceID int64           `json:"source_id" validate:"required"`
	DestID   int64           `json:"dest_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type UpdateFraudActionRequest struct {
	LogID     int64  `json:"log_id" validate:"required"`
	AccountID int64  `json:"account_id" validate:"required"`
	NewStatus string `json:"new_status" validate:"required,oneof=active flagged frozen closed"`
}

type CreateFraudFlagRequest struct {
	TransactionID int64  `json:"transaction_id" validate:"required"`
	RuleID        *int64 `json:"rule_id"`
	DetectedRule  string `json:"detected_rule" validate:"required,max=100"`
}

type CreateFraudRuleRequest struct {
	Name        string `json:"rule_name" validate:"required,max=100"`
	Description string `json:"rule_description" validate:"max=500"`
	Action      string `json:"action" validate:"required,max=50"`
	RiskLevel   string `json:"risk_level" validate:"required,oneof=low medium high"`
	Precedence  int    `json:"precedence" validate:"gte=0"`
	Active      bool   `json:"active"`
}

type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalTransactions int64 `json:"total_transactions"`
	FraudIncidents    int64 `json:"fraud_incidents"`
}
