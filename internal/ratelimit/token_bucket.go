// Package ratelimit throttles inbound API traffic with a redis token
// bucket and persists the outcome for the support dashboard.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
local first = 0

if tokens == nil then
  tokens = burst
  ts = now
  first = 1
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), ts, first}
`

type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type Result struct {
	Allowed           bool
	Limit             int
	Remaining         int
	RetryAfter        time.Duration
	IsFirstInDuration bool
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

// Allow consumes one token from the bucket for key, refilling at rate
// tokens per second up to burst.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (Result, error) {
	if t == nil || t.client == nil {
		return Result{}, errors.New("rate limiter not configured")
	}
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}
	if rate <= 0 || burst <= 0 {
		return Result{}, errors.New("rate limiter rate and burst must be positive")
	}

	ttl := bucketTTL(rate, burst)
	raw, err := t.script.Run(ctx, t.client, []string{key},
		rate, burst, int64(ttl/time.Millisecond),
	).Slice()
	if err != nil {
		return Result{}, err
	}
	if len(raw) < 4 {
		return Result{}, errors.New("unexpected rate limit script response")
	}

	allowed, _ := raw[0].(int64)
	tokens := parseTokens(raw[1])
	first, _ := raw[3].(int64)

	result := Result{
		Allowed:           allowed == 1,
		Limit:             burst,
		Remaining:         int(math.Floor(tokens)),
		IsFirstInDuration: first == 1,
	}
	if !result.Allowed {
		result.RetryAfter = time.Duration((1-tokens)/rate*float64(time.Second)) + time.Millisecond
	}
	return result, nil
}

// bucketTTL keeps idle buckets around just long enough to refill fully.
func bucketTTL(rate float64, burst int) time.Duration {
	refill := time.Duration(float64(burst) / rate * float64(time.Second))
	if refill < time.Minute {
		return time.Minute
	}
	return 2 * refill
}

func parseTokens(value any) float64 {
	switch v := value.(type) {
	case string:
		tokens, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return tokens
	case int64:
		return float64(v)
	default:
		return 0
	}
}
