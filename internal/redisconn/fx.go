// Package redisconn wires the optional redis connection used by the rate
// limiter. Without an address configured the client is nil and callers
// degrade to pass-through behaviour.
package redisconn

import (
	"github.com/ecomprotect/sentinel/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func New(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Named("redis").Info("redis not configured, rate limiting disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

var Module = fx.Module("redis",
	fx.Provide(New),
)
