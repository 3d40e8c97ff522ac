package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fraudshield/backend/internal/models"
)

// ErrorResponse is the JSON error body shared by every handler.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// decodeRequest strictly decodes a single JSON object into dst: size
// capped, unknown fields rejected, trailing content rejected.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// sendError writes a JSON error, expanding validator errors into a
// per-field detail map.
func sendError(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	resp := ErrorResponse{Error: message}

	var verrs validator.ValidationErrors
	if errors.As(validationErr, &verrs) {
		resp.Details = make(map[string]string)
		for _, err := range verrs {
			resp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}
	writeJSON(w, statusCode, resp)
}

// sendServiceError maps a domain error onto an HTTP status. Store
// failures are 503 and safe to retry; nothing partial ever committed.
func sendServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidTransfer),
		errors.Is(err, models.ErrInvalidStatus):
		sendError(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, models.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		sendError(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, models.ErrForbidden):
		sendError(w, err.Error(), http.StatusForbidden, nil)
	case errors.Is(err, models.ErrStoreUnavailable):
		sendError(w, "store temporarily unavailable, retry", http.StatusServiceUnavailable, nil)
	default:
		sendError(w, "internal error", http.StatusInternalServerError, nil)
	}
}
