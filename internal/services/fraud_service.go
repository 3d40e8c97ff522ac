package services

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fraudshield/backend/internal/models"
)

// FraudReviewService owns fraud flag rows and runs the review workflow
// over them. UpdateAction is the one place in the system that mutates
// account status, and it does so in the same transaction that mutates
// the flag.
type FraudReviewService struct {
	db       *sql.DB
	accounts *AccountStore
	logger   *zap.Logger
}

func NewFraudReviewService(db *sql.DB, accounts *AccountStore, logger *zap.Logger) *FraudReviewService {
	return &FraudReviewService{
		db:       db,
		accounts: accounts,
		logger:   logger,
	}
}

// ListPendingFlags returns the review queue: pending flags joined with
// their transaction's account, amount and time, ordered by account then
// newest first. The transaction join is outer so a flag with broken
// foreign data still lists, with nil transaction fields, instead of
// aborting the whole queue.
func (s *FraudReviewService) ListPendingFlags(ctx context.Context) ([]models.FraudFlagDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.log_id, f.transaction_id, f.rule_id, f.detected_rule, f.status, f.created_at,
		       t.account_id, t.amount, t.transaction_time
		FROM fraud_logs f
		LEFT JOIN transactions t ON t.transaction_id = f.transaction_id
		WHERE f.status = 'pending'
		ORDER BY t.account_id NULLS LAST, f.created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	flags := []models.FraudFlagDetail{}
	for rows.Next() {
		var (
			d         models.FraudFlagDetail
			ruleID    sql.NullInt64
			accountID sql.NullInt64
			amount    sql.NullString
			txTime    sql.NullTime
		)
		if err := rows.Scan(&d.LogID, &d.TransactionID, &ruleID, &d.DetectedRule, &d.Status, &d.CreatedAt,
			&accountID, &amount, &txTime); err != nil {
			return nil, storeErr(err)
		}
		if ruleID.Valid {
			d.RuleID = &ruleID.Int64
		}
		if accountID.Valid {
			d.AccountID = &accountID.Int64
		}
		if amount.Valid {
			dec, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, storeErr(err)
			}
			d.Amount = &dec
		}
		if txTime.Valid {
			d.TransactionTime = &txTime.Time
		}
		flags = append(flags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return flags, nil
}

// Resolve marks a flag resolved. It is idempotent: resolving an
// already-resolved flag succeeds without re-applying anything. Only a
// flag that does not exist at all is an error.
func (s *FraudReviewService) Resolve(ctx context.Context, flagID int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fraud_logs
		SET status = 'resolved'
		WHERE log_id = $1`,
		flagID)
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

	s.logger.Info("fraud flag resolved", zap.Int64("log_id", flagID))
	return nil
}

// UpdateAction applies a review decision: the flag's status and the
// referenced account's status both become newStatus, or neither does. A
// partially applied action is never observable.
func (s *FraudReviewService) UpdateAction(ctx context.Context, req models.UpdateFraudActionRequest) error {
	status := models.AccountStatus(req.NewStatus)
	if !status.Valid() {
		return models.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	var logID int64
	err = tx.QueryRowContext(ctx, `
		SELECT log_id
		FROM fraud_logs
		WHERE log_id = $1
		FOR UPDATE`,
		req.LogID,
	).Scan(&logID)
	if err == sql.ErrNoRows {
		return models.ErrNotFound
	}
	if err != nil {
		return storeErr(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE fraud_logs
		SET status = $1
		WHERE log_id = $2`,
		status, req.LogID); err != nil {
		return storeErr(err)
	}

	if err := s.accounts.setStatus(ctx, tx, req.AccountID, status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr(err)
	}

	s.logger.Info("fraud action applied",
		zap.Int64("log_id", req.LogID),
		zap.Int64("account_id", req.AccountID),
		zap.String("new_status", req.NewStatus),
	)
	return nil
}

// CreateFlag records a detection hit. The referenced transaction must
// exist at creation time; the detection process itself is not validated
// beyond that.
func (s *FraudReviewService) CreateFlag(ctx context.Context, req models.CreateFraudFlagRequest) (*models.FraudFlag, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)`,
		req.TransactionID,
	).Scan(&exists)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, models.ErrNotFound
	}

	flag := &models.FraudFlag{
		TransactionID: req.TransactionID,
		RuleID:        req.RuleID,
		DetectedRule:  req.DetectedRule,
		Status:        string(models.FlagPending),
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO fraud_logs (transaction_id, rule_id, detected_rule, status)
		VALUES ($1, $2, $3, $4)
		RETURNING log_id, created_at`,
		flag.TransactionID, flag.RuleID, flag.DetectedRule, flag.Status,
	).Scan(&flag.LogID, &flag.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return flag, nil
}

// ListActiveRules returns the active rule set in precedence order
// (lower first). Rules are configuration; nothing here evaluates them.
func (s *FraudReviewService) ListActiveRules(ctx context.Context) ([]models.FraudRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, rule_name, rule_description, action, risk_level, precedence, active
		FROM fraud_rules
		WHERE active = TRUE
		ORDER BY precedence, rule_id`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	rules := []models.FraudRule{}
	for rows.Next() {
		var r models.FraudRule
		if err := rows.Scan(&r.RuleID, &r.Name, &r.Description, &r.Action,
			&r.RiskLevel, &r.Precedence, &r.Active); err != nil {
			return nil, storeErr(err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return rules, nil
}

// CreateRule adds a configuration rule from the admin surface.
func (s *FraudReviewService) CreateRule(ctx context.Context, req models.CreateFraudRuleRequest) (*models.FraudRule, error) {
	rule := &models.FraudRule{
		Name:        req.Name,
		Description: req.Description,
		Action:      req.Action,
		RiskLevel:   req.RiskLevel,
		Precedence:  req.Precedence,
		Active:      req.Active,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO fraud_rules (rule_name, rule_description, action, risk_level, precedence, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING rule_id`,
		rule.Name, rule.Description, rule.Action, rule.RiskLevel, rule.Precedence, rule.Active,
	).Scan(&rule.RuleID)
	if err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info("fraud rule created",
		zap.Int64("rule_id", rule.RuleID),
		zap.String("rule_name", rule.Name),
	)
	return rule, nil
}
