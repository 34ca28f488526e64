package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, settings *StoreSettings) error
	FindByStoreID(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*StoreSettings, error)
	Update(ctx context.Context, db *gorm.DB, settings *StoreSettings) error
}
