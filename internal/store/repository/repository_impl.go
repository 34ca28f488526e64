package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/store/domain"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stores (
			id, company_name, company_registration_number, store_url,
			average_orders_per_month, plan, package, status,
			shopify_api_key, shopify_api_secret, shopify_webhook_url,
			is_active, approved_at, approved_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		store.ID,
		store.CompanyName,
		store.CompanyRegistrationNumber,
		store.StoreURL,
		store.AverageOrdersPerMonth,
		store.Plan,
		store.Package,
		store.Status,
		store.ShopifyAPIKey,
		store.ShopifyAPISecret,
		store.ShopifyWebhookURL,
		store.IsActive,
		store.ApprovedAt,
		store.ApprovedBy,
		store.CreatedAt,
		store.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM stores WHERE id = ?`, id,
	).Scan(&store).Error
	if err != nil {
		return nil, err
	}
	if store.ID == 0 {
		return nil, nil
	}
	return &store, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	query := `SELECT * FROM stores WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, id).Scan(&store).Error
	if err != nil {
		return nil, err
	}
	if store.ID == 0 {
		return nil, nil
	}
	return &store, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Exec(
		`UPDATE stores SET
			company_name = ?, company_registration_number = ?, store_url = ?,
			average_orders_per_month = ?, plan = ?, package = ?, status = ?,
			shopify_api_key = ?, shopify_api_secret = ?, shopify_webhook_url = ?,
			is_active = ?, approved_at = ?, approved_by = ?, updated_at = ?
		 WHERE id = ?`,
		store.CompanyName,
		store.CompanyRegistrationNumber,
		store.StoreURL,
		store.AverageOrdersPerMonth,
		store.Plan,
		store.Package,
		store.Status,
		store.ShopifyAPIKey,
		store.ShopifyAPISecret,
		store.ShopifyWebhookURL,
		store.IsActive,
		store.ApprovedAt,
		store.ApprovedBy,
		store.UpdatedAt,
		store.ID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListStoreFilter, page pagination.Pagination) ([]*domain.Store, error) {
	var stores []*domain.Store
	stmt := db.WithContext(ctx).Model(&domain.Store{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		stmt = stmt.Where("plan = ?", filter.Plan)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}
