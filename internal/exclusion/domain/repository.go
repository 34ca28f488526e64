package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, exclusion *CustomerExclusion) error
	FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*CustomerExclusion, error)
	ListActive(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]*CustomerExclusion, error)
	Update(ctx context.Context, db *gorm.DB, exclusion *CustomerExclusion) error
}
