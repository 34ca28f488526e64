package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/exclusion/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, exclusion *domain.CustomerExclusion) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customer_exclusions (
			id, store_id, customer_email, customer_address, customer_phone,
			reason, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exclusion.ID,
		exclusion.StoreID,
		exclusion.CustomerEmail,
		exclusion.CustomerAddress,
		exclusion.CustomerPhone,
		exclusion.Reason,
		exclusion.IsActive,
		exclusion.CreatedAt,
		exclusion.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*domain.CustomerExclusion, error) {
	var exclusion domain.CustomerExclusion
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM customer_exclusions WHERE store_id = ? AND id = ?`,
		storeID,
		id,
	).Scan(&exclusion).Error
	if err != nil {
		return nil, err
	}
	if exclusion.ID == 0 {
		return nil, nil
	}
	return &exclusion, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]*domain.CustomerExclusion, error) {
	var exclusions []*domain.CustomerExclusion
	err := db.WithContext(ctx).
		Model(&domain.CustomerExclusion{}).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Order("created_at desc, id desc").
		Find(&exclusions).Error
	if err != nil {
		return nil, err
	}
	return exclusions, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, exclusion *domain.CustomerExclusion) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customer_exclusions SET
			customer_email = ?, customer_address = ?, customer_phone = ?,
			reason = ?, is_active = ?, updated_at = ?
		 WHERE store_id = ? AND id = ?`,
		exclusion.CustomerEmail,
		exclusion.CustomerAddress,
		exclusion.CustomerPhone,
		exclusion.Reason,
		exclusion.IsActive,
		exclusion.UpdatedAt,
		exclusion.StoreID,
		exclusion.ID,
	).Error
}
