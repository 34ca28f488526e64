package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/reportcache/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.ReportCache) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO report_cache (
			id, report_type, store_id, parameters, result, expires_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ReportType,
		entry.StoreID,
		entry.Parameters,
		entry.Result,
		entry.ExpiresAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindLatest(ctx context.Context, db *gorm.DB, reportType string, storeID *snowflake.ID) (*domain.ReportCache, error) {
	var entry domain.ReportCache
	stmt := db.WithContext(ctx).Model(&domain.ReportCache{}).
		Where("report_type = ?", reportType)
	if storeID != nil {
		stmt = stmt.Where("store_id = ?", *storeID)
	} else {
		stmt = stmt.Where("store_id IS NULL")
	}
	err := stmt.Order("created_at desc, id desc").Limit(1).Find(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM report_cache WHERE expires_at < ?`, now)
	return result.RowsAffected, result.Error
}
