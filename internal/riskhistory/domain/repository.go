package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OrderCounts is the recount of a customer's orders within the lookback
// window. Lost covers flagged orders plus cancelled and auto-cancelled ones.
type OrderCounts struct {
	Total         int
	Flagged       int
	Lost          int
	LastFlaggedAt *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, history *CustomerRiskHistory) error
	Update(ctx context.Context, db *gorm.DB, history *CustomerRiskHistory) error
	FindForUpdate(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string) (*CustomerRiskHistory, error)
	Find(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string) (*CustomerRiskHistory, error)

	// CountOrders recounts the customer's orders created at or after since.
	CountOrders(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string, since time.Time) (OrderCounts, error)
}
