package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/apiusage/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, usage *domain.ApiUsage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO api_usage (
			id, store_id, endpoint, method, response_time, status_code,
			ip_address, user_agent, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		usage.ID,
		usage.StoreID,
		usage.Endpoint,
		usage.Method,
		usage.ResponseTime,
		usage.StatusCode,
		usage.IPAddress,
		usage.UserAgent,
		usage.CreatedAt,
		usage.UpdatedAt,
	).Error
}

func (r *repo) CountSince(ctx context.Context, db *gorm.DB, storeID snowflake.ID, since time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.ApiUsage{}).
		Where("store_id = ? AND created_at >= ?", storeID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
