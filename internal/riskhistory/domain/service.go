package domain

import (
	"context"
	"errors"
)

// Service maintains the per-customer aggregate. Recompute serializes on the
// (store, customer) row and is idempotent, so it is safe to re-run after
// any order status change.
type Service interface {
	Recompute(ctx context.Context, customerEmail string) (CustomerRiskHistory, error)
	Get(ctx context.Context, customerEmail string) (*CustomerRiskHistory, error)
}

var (
	ErrInvalidStore    = errors.New("invalid_store")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrConflict        = errors.New("history_conflict")
)
