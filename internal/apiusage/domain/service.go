package domain

import (
	"context"
	"errors"
)

type RecordUsageRequest struct {
	Endpoint     string
	Method       string
	ResponseTime *int
	StatusCode   *int
}

type Service interface {
	Record(ctx context.Context, req RecordUsageRequest) error
	CountLast30Days(ctx context.Context) (int64, error)
}

var (
	ErrInvalidStore    = errors.New("invalid_store")
	ErrMissingEndpoint = errors.New("missing_endpoint")
)
