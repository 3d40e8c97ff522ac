package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mW "github.com/fraudshield/backend/internal/middleware"
	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
)

// LedgerHandler exposes the user-facing ledger surface: own accounts,
// deposits, withdrawals, transfers and the own-transaction listing.
type LedgerHandler struct {
	ledger    *services.LedgerService
	accounts  *services.AccountStore
	journal   *services.TransactionJournal
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewLedgerHandler(ledger *services.LedgerService, accounts *services.AccountStore, journal *services.TransactionJournal, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		accounts:  accounts,
		journal:   journal,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// ListAccounts returns the caller's accounts
// @Summary List own accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Account
// @Router /user/accounts [get]
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	caller, ok := mW.CallerFrom(r.Context())
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	accounts, err := h.accounts.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount opens a fresh account for the caller
// @Summary Create account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Account
// @Router /user/accounts [post]
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := mW.CallerFrom(r.Context())
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	acct, err := h.accounts.Create(r.Context(), caller.UserID)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	h.logger.Info("account created",
		zap.Int64("account_id", acct.ID),
		zap.Int64("user_id", caller.UserID),
	)
	writeJSON(w, http.StatusCreated, acct)
}

// Deposit credits an owned account
// @Summary Deposit into an account
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountID path int true "Account ID"
// @Param request body models.AmountRequest true "Deposit amount"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /user/accounts/{accountID}/deposit [post]
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.ledger.Deposit)
}

// Withdraw debits an owned account
// @Summary Withdraw from an account
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountID path int true "Account ID"
// @Param request body models.AmountRequest true "Withdrawal amount"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /user/accounts/{accountID}/withdraw [post]
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.ledger.Withdraw)
}

// Transfer moves funds between accounts
// @Summary Transfer between accounts
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TransferRequest true "Transfer request"
// @Success 201 {array} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /user/transfer [post]
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := mW.CallerFrom(r.Context())
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req models.TransferRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		sendError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	entries, err := h.ledger.Transfer(r.Context(), caller, req.SourceID, req.DestID, req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entries)
}

// ListTransactions returns the caller's journal entries
// @Summary List own transactions
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Transaction
// @Router /user/transactions [get]
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := mW.CallerFrom(r.Context())
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	// Optional per-account filter in audit order.
	if acctParam := r.URL.Query().Get("accountId"); acctParam != "" {
		accountID, err := strconv.ParseInt(acctParam, 10, 64)
		if err != nil {
			sendError(w, "Invalid accountId", http.StatusBadRequest, nil)
			return
		}
		if _, err := h.accounts.GetOwned(r.Context(), accountID, caller.UserID); err != nil {
			sendServiceError(w, err)
			return
		}
		entries, err := h.journal.ListByAccount(r.Context(), accountID)
		if err != nil {
			sendServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	entries, err := h.journal.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// mutateBalance shares the decode/authorize shape of Deposit and
// Withdraw; amount positivity is enforced by the ledger service.
func (h *LedgerHandler) mutateBalance(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller models.Caller, accountID int64, amount decimal.Decimal) (*models.Transaction, error)) {
	caller, ok := mW.CallerFrom(r.Context())
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		sendError(w, "Invalid account identifier", http.StatusBadRequest, nil)
		return
	}

	var req models.AmountRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	entry, err := op(r.Context(), caller, accountID, req.Amount)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
