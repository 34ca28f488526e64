package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/billing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *domain.PackageSubscription) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO package_subscriptions (
			id, store_id, package, plan, status, go_cardless_mandate_id,
			go_cardless_subscription_id, monthly_price, next_billing_date,
			cancelled_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		subscription.ID,
		subscription.StoreID,
		subscription.Package,
		subscription.Plan,
		subscription.Status,
		subscription.GoCardlessMandateID,
		subscription.GoCardlessSubscriptionID,
		subscription.MonthlyPrice,
		subscription.NextBillingDate,
		subscription.CancelledAt,
		subscription.CreatedAt,
		subscription.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, subscription *domain.PackageSubscription) error {
	return db.WithContext(ctx).Exec(
		`UPDATE package_subscriptions SET
			status = ?, go_cardless_mandate_id = ?, go_cardless_subscription_id = ?,
			monthly_price = ?, next_billing_date = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ?`,
		subscription.Status,
		subscription.GoCardlessMandateID,
		subscription.GoCardlessSubscriptionID,
		subscription.MonthlyPrice,
		subscription.NextBillingDate,
		subscription.CancelledAt,
		subscription.UpdatedAt,
		subscription.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*domain.PackageSubscription, error) {
	var subscription domain.PackageSubscription
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM package_subscriptions WHERE id = ? AND store_id = ?`, id, storeID,
	).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*domain.PackageSubscription, error) {
	var subscription domain.PackageSubscription
	query := `SELECT * FROM package_subscriptions WHERE id = ? AND store_id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, id, storeID).Scan(&subscription).Error
	if err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]*domain.PackageSubscription, error) {
	var subscriptions []*domain.PackageSubscription
	err := db.WithContext(ctx).Model(&domain.PackageSubscription{}).
		Where("store_id = ?", storeID).
		Order("created_at desc, id desc").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}
