package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	apiusagedomain "github.com/ecomprotect/sentinel/internal/apiusage/domain"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/ratelimit"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	headerStoreID   = "X-Store-ID"
	headerActorID   = "X-Actor-ID"
	headerRequestID = "X-Request-ID"
)

// ContextMiddleware moves the tenant and audit identity from headers into
// the request context for the service layer.
type ContextMiddleware struct{}

func NewContextMiddleware() *ContextMiddleware { return &ContextMiddleware{} }

func (m *ContextMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := c.GetHeader(headerStoreID); raw != "" {
			storeID, err := snowflake.ParseString(raw)
			if err != nil || storeID == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_store_id"})
				return
			}
			ctx = storectx.WithStoreID(ctx, int64(storeID))
		}
		if actor := c.GetHeader(headerActorID); actor != "" {
			ctx = auditctx.WithActor(ctx, actor)
		}

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = auditctx.WithRequestID(ctx, requestID)
		ctx = auditctx.WithIPAddress(ctx, c.ClientIP())
		ctx = auditctx.WithUserAgent(ctx, c.Request.UserAgent())

		c.Header(headerRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RateLimitMiddleware throttles per store, falling back to the client IP
// for unauthenticated traffic.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

type RateLimitParams struct {
	fx.In

	Limiter *ratelimit.Limiter
}

func NewRateLimitMiddleware(p RateLimitParams) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: p.Limiter}
}

func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if storeID, ok := storectx.StoreIDFromContext(c.Request.Context()); ok && storeID != 0 {
			key = "store:" + storeID.String()
		}

		result, err := m.limiter.Allow(c.Request.Context(), key, c.FullPath(), ratelimit.DefaultRate, ratelimit.DefaultBurst)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate_limit_unavailable"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}

// UsageMiddleware records one api_usage row per tenant request.
type UsageMiddleware struct {
	usage apiusagedomain.Service
	clock clock.Clock
	log   *zap.Logger
}

type UsageParams struct {
	fx.In

	Usage apiusagedomain.Service
	Clock clock.Clock
	Log   *zap.Logger
}

func NewUsageMiddleware(p UsageParams) *UsageMiddleware {
	return &UsageMiddleware{usage: p.Usage, clock: p.Clock, log: p.Log.Named("server.usage")}
}

func (m *UsageMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := m.clock.Now()
		c.Next()

		ctx := c.Request.Context()
		if _, ok := storectx.StoreIDFromContext(ctx); !ok {
			return
		}

		elapsed := int(m.clock.Now().Sub(start) / time.Millisecond)
		status := c.Writer.Status()
		err := m.usage.Record(ctx, apiusagedomain.RecordUsageRequest{
			Endpoint:     c.FullPath(),
			Method:       c.Request.Method,
			ResponseTime: &elapsed,
			StatusCode:   &status,
		})
		if err != nil {
			m.log.Warn("usage record failed", zap.Error(err))
		}
	}
}
