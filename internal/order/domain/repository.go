package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	StoreID       snowflake.ID
	Status        Status
	IsFlagged     *bool
	CustomerEmail string
	Cursor        *OrderCursor
	Limit         int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*Order, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListOrderFilter) ([]*Order, error)

	// ListAwaitingAction returns flagged orders across all stores that
	// have not had an automated action applied yet, oldest flag first.
	ListAwaitingAction(ctx context.Context, db *gorm.DB, limit int) ([]*Order, error)
}
