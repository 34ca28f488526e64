package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *PackageSubscription) error
	Update(ctx context.Context, db *gorm.DB, subscription *PackageSubscription) error
	FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*PackageSubscription, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*PackageSubscription, error)
	ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]*PackageSubscription, error)
}
