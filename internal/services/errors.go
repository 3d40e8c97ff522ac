package services

import (
	"fmt"

	"github.com/fraudshield/backend/internal/models"
)

// storeErr wraps a database failure as a retryable store error. The
// enclosing transaction never commits, so callers can safely retry.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}
