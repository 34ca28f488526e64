package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, history *domain.CustomerRiskHistory) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customer_risk_history (
			id, store_id, customer_email, customer_address, customer_phone,
			customer_ip, total_orders, flagged_orders, lost_orders, loss_rate,
			last_flagged_at, risk_level, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		history.ID,
		history.StoreID,
		history.CustomerEmail,
		history.CustomerAddress,
		history.CustomerPhone,
		history.CustomerIP,
		history.TotalOrders,
		history.FlaggedOrders,
		history.LostOrders,
		history.LossRate,
		history.LastFlaggedAt,
		history.RiskLevel,
		history.IsActive,
		history.CreatedAt,
		history.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, history *domain.CustomerRiskHistory) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customer_risk_history SET
			total_orders = ?, flagged_orders = ?, lost_orders = ?, loss_rate = ?,
			last_flagged_at = ?, risk_level = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		history.TotalOrders,
		history.FlaggedOrders,
		history.LostOrders,
		history.LossRate,
		history.LastFlaggedAt,
		history.RiskLevel,
		history.IsActive,
		history.UpdatedAt,
		history.ID,
	).Error
}

func (r *repo) FindForUpdate(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string) (*domain.CustomerRiskHistory, error) {
	var history domain.CustomerRiskHistory
	query := `SELECT * FROM customer_risk_history
		 WHERE store_id = ? AND lower(customer_email) = lower(?)`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, storeID, customerEmail).Scan(&history).Error
	if err != nil {
		return nil, err
	}
	if history.ID == 0 {
		return nil, nil
	}
	return &history, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string) (*domain.CustomerRiskHistory, error) {
	var history domain.CustomerRiskHistory
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM customer_risk_history
		 WHERE store_id = ? AND lower(customer_email) = lower(?)`,
		storeID, customerEmail,
	).Scan(&history).Error
	if err != nil {
		return nil, err
	}
	if history.ID == 0 {
		return nil, nil
	}
	return &history, nil
}

func (r *repo) CountOrders(ctx context.Context, db *gorm.DB, storeID snowflake.ID, customerEmail string, since time.Time) (domain.OrderCounts, error) {
	var row struct {
		Total   int
		Flagged int
		Lost    int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_flagged THEN 1 ELSE 0 END), 0) AS flagged,
			COALESCE(SUM(CASE WHEN is_flagged OR status IN ('cancelled', 'auto_cancelled') THEN 1 ELSE 0 END), 0) AS lost
		 FROM orders
		 WHERE store_id = ? AND lower(customer_email) = lower(?) AND created_at >= ?`,
		storeID, customerEmail, since,
	).Scan(&row).Error
	if err != nil {
		return domain.OrderCounts{}, err
	}

	counts := domain.OrderCounts{
		Total:   row.Total,
		Flagged: row.Flagged,
		Lost:    row.Lost,
	}
	if row.Flagged > 0 {
		var last struct {
			FlaggedAt *time.Time
		}
		err = db.WithContext(ctx).Raw(
			`SELECT flagged_at
			 FROM orders
			 WHERE store_id = ? AND lower(customer_email) = lower(?) AND created_at >= ?
			   AND flagged_at IS NOT NULL
			 ORDER BY flagged_at DESC
			 LIMIT 1`,
			storeID, customerEmail, since,
		).Scan(&last).Error
		if err != nil {
			return domain.OrderCounts{}, err
		}
		counts.LastFlaggedAt = last.FlaggedAt
	}
	return counts, nil
}
