package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fraudshield/backend/internal/models"
	"github.com/fraudshield/backend/internal/services"
)

// FraudHandler exposes the admin review surface over the fraud flag
// store and workflow.
type FraudHandler struct {
	review    *services.FraudReviewService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewFraudHandler(review *services.FraudReviewService, logger *zap.Logger) *FraudHandler {
	return &FraudHandler{
		review:    review,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// ListFlags returns the pending review queue
// @Summary List pending fraud flags
// @Tags fraud
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FraudFlagDetail
// @Router /admin/fraud-logs [get]
func (h *FraudHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.review.ListPendingFlags(r.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

// Resolve marks a flag resolved
// @Summary Resolve a fraud flag
// @Tags fraud
// @Produce json
// @Security BearerAuth
// @Param logID path int true "Flag ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /admin/resolve/{logID} [post]
func (h *FraudHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	logID, err := strconv.ParseInt(chi.URLParam(r, "logID"), 10, 64)
	if err != nil {
		sendError(w, "Invalid flag identifier", http.StatusBadRequest, nil)
		return
	}

	if err := h.review.Resolve(r.Context(), logID); err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fraud incident marked as resolved."})
}

// UpdateAction applies a review decision to a flag and its account
// @Summary Apply a fraud review action
// @Tags fraud
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateFraudActionRequest true "Review action"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/update-fraud-action [post]
func (h *FraudHandler) UpdateAction(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFraudActionRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		sendError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := h.review.UpdateAction(r.Context(), req); err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Action applied."})
}

// CreateFlag ingests a detection hit referencing an existing transaction
// @Summary Create a fraud flag
// @Tags fraud
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateFraudFlagRequest true "Flag data"
// @Success 201 {object} models.FraudFlag
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/fraud-flags [post]
func (h *FraudHandler) CreateFlag(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFraudFlagRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		sendError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	flag, err := h.review.CreateFlag(r.Context(), req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, flag)
}

// ListRules returns active fraud rules
// @Summary List active fraud rules
// @Tags fraud
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FraudRule
// @Router /admin/fraud-rules [get]
func (h *FraudHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.review.ListActiveRules(r.Context())
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateRule adds a fraud rule
// @Summary Create a fraud rule
// @Tags fraud
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateFraudRuleRequest true "Rule data"
// @Success 201 {object} models.FraudRule
// @Failure 400 {object} ErrorResponse
// @Router /admin/fraud-rules [post]
func (h *FraudHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFraudRuleRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		sendError(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	rule, err := h.review.CreateRule(r.Context(), req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}
