package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, store_id, shopify_order_id, order_number, customer_email,
			customer_first_name, customer_last_name, customer_address,
			customer_phone, customer_ip, order_value, currency,
			delivery_method, status, risk_level, risk_score, risk_reason,
			is_flagged, flagged_at, flagged_by, review_notes, action_taken,
			action_taken_at, action_taken_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.StoreID,
		order.ShopifyOrderID,
		order.OrderNumber,
		order.CustomerEmail,
		order.CustomerFirstName,
		order.CustomerLastName,
		order.CustomerAddress,
		order.CustomerPhone,
		order.CustomerIP,
		order.OrderValue,
		order.Currency,
		order.DeliveryMethod,
		order.Status,
		order.RiskLevel,
		order.RiskScore,
		order.RiskReason,
		order.IsFlagged,
		order.FlaggedAt,
		order.FlaggedBy,
		order.ReviewNotes,
		order.ActionTaken,
		order.ActionTakenAt,
		order.ActionTakenBy,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET
			status = ?, risk_level = ?, risk_score = ?, risk_reason = ?,
			is_flagged = ?, flagged_at = ?, flagged_by = ?, review_notes = ?,
			action_taken = ?, action_taken_at = ?, action_taken_by = ?,
			updated_at = ?
		 WHERE id = ?`,
		order.Status,
		order.RiskLevel,
		order.RiskScore,
		order.RiskReason,
		order.IsFlagged,
		order.FlaggedAt,
		order.FlaggedBy,
		order.ReviewNotes,
		order.ActionTaken,
		order.ActionTakenAt,
		order.ActionTakenBy,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ? AND store_id = ?`, id, storeID,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, storeID, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT * FROM orders WHERE id = ? AND store_id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, id, storeID).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListOrderFilter) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{}).
		Where("store_id = ?", filter.StoreID)

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.IsFlagged != nil {
		stmt = stmt.Where("is_flagged = ?", *filter.IsFlagged)
	}
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		stmt = stmt.Where("lower(customer_email) = lower(?)", email)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) ListAwaitingAction(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{}).
		Where("status = ?", domain.StatusFlagged).
		Where("action_taken IS NULL").
		Order("flagged_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
