package domain

import (
	"context"
	"errors"
	"time"
)

// ComputeFunc produces the report payload on a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

type Service interface {
	// GetOrCompute returns the cached result when a fresh row with the
	// same parameters exists, otherwise recomputes and caches it.
	GetOrCompute(ctx context.Context, reportType string, parameters map[string]any, ttl time.Duration, compute ComputeFunc) ([]byte, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

var ErrMissingReportType = errors.New("missing_report_type")
