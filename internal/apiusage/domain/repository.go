package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, usage *ApiUsage) error
	CountSince(ctx context.Context, db *gorm.DB, storeID snowflake.ID, since time.Time) (int64, error)
}
