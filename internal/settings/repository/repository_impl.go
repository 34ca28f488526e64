package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, settings *domain.StoreSettings) error {
	return db.WithContext(ctx).Create(settings).Error
}

func (r *repo) FindByStoreID(ctx context.Context, db *gorm.DB, storeID snowflake.ID) (*domain.StoreSettings, error) {
	var settings domain.StoreSettings
	err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Take(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, settings *domain.StoreSettings) error {
	return db.WithContext(ctx).
		Model(&domain.StoreSettings{}).
		Where("id = ? AND store_id = ?", settings.ID, settings.StoreID).
		Select("*").
		Omit("id", "store_id", "created_at").
		Updates(settings).Error
}
