package ratelimit

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Default bucket for API clients without a plan-specific override.
	DefaultRate  = 10.0
	DefaultBurst = 60
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Bucket  *TokenBucket `optional:"true"`
	Insight InsightRepository
}

// Limiter throttles per-client request rates. Without redis configured it
// lets everything through.
type Limiter struct {
	db      *gorm.DB
	log     *zap.Logger
	bucket  *TokenBucket
	insight InsightRepository
}

func NewLimiter(p Params) *Limiter {
	return &Limiter{
		db:      p.DB,
		log:     p.Log.Named("ratelimit"),
		bucket:  p.Bucket,
		insight: p.Insight,
	}
}

func (l *Limiter) Allow(ctx context.Context, key, endpoint string, rate float64, burst int) (Result, error) {
	if l.bucket == nil {
		return Result{Allowed: true, Limit: burst, Remaining: burst}, nil
	}
	if rate <= 0 {
		rate = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	result, err := l.bucket.Allow(ctx, key, rate, burst)
	if err != nil {
		// Redis being down must not take the API with it.
		l.log.Warn("rate limit check failed, allowing request", zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Limit: burst, Remaining: burst}, nil
	}

	insight := &ThrottleInsight{
		Key:               key,
		WaitTime:          int(result.RetryAfter.Seconds()),
		MsBeforeNext:      int(result.RetryAfter.Milliseconds()),
		PointsAllotted:    result.Limit,
		ConsumedPoints:    result.Limit - result.Remaining,
		RemainingPoints:   result.Remaining,
		IsFirstInDuration: result.IsFirstInDuration,
	}
	if endpoint != "" {
		insight.EndPoint = &endpoint
	}
	if err := l.insight.Upsert(ctx, l.db, insight); err != nil {
		l.log.Warn("throttle insight write failed", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}
