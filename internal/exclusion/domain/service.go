package domain

import (
	"context"
	"errors"
)

type CreateExclusionRequest struct {
	CustomerEmail   string
	CustomerAddress string
	CustomerPhone   string
	Reason          string
}

type Service interface {
	Create(ctx context.Context, req CreateExclusionRequest) (CustomerExclusion, error)
	ListActive(ctx context.Context) ([]CustomerExclusion, error)
	Deactivate(ctx context.Context, id string) error

	// Match reports whether an active exclusion covers the identity.
	Match(ctx context.Context, email, address, phone string) (bool, error)
}

var (
	ErrInvalidStore      = errors.New("invalid_store")
	ErrMissingIdentity   = errors.New("missing_identity")
	ErrInvalidID         = errors.New("invalid_id")
	ErrExclusionNotFound = errors.New("exclusion_not_found")
)
