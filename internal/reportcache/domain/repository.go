package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *ReportCache) error

	// FindLatest returns the newest row for the report type and store,
	// expired or not. The caller decides whether it is still usable.
	FindLatest(ctx context.Context, db *gorm.DB, reportType string, storeID *snowflake.ID) (*ReportCache, error)
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
