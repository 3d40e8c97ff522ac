package models

import "errors"

// Domain errors returned by the services layer. Handlers map these onto
// HTTP status codes; anything wrapping ErrStoreUnavailable is retryable
// because the failed operation never committed partial state.
var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransfer   = errors.New("invalid transfer request")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrForbidden         = errors.New("forbidden")
	ErrStoreUnavailable  = errors.New("store unavailable")
)
