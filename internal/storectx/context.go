package storectx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// StoreContextKey is the request context key for the active store (tenant) ID.
type StoreContextKey struct{}

// WithStoreID stores the tenant store ID in the context.
func WithStoreID(ctx context.Context, storeID int64) context.Context {
	return context.WithValue(ctx, StoreContextKey{}, storeID)
}

// StoreIDFromContext returns the store ID from context, if set.
func StoreIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	value := ctx.Value(StoreContextKey{})
	if value == nil {
		return 0, false
	}

	switch typed := value.(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
