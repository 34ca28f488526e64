// Package domain holds the rolling per-customer risk aggregate. One row
// exists per (store, customer email) and is recomputed from the orders
// table whenever an order for that customer changes state.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
)

type CustomerRiskHistory struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index:idx_risk_history_identity,unique" json:"store_id"`

	CustomerEmail   string  `gorm:"not null;index:idx_risk_history_identity,unique" json:"customer_email"`
	CustomerAddress *string `gorm:"type:text" json:"customer_address,omitempty"`
	CustomerPhone   *string `gorm:"type:text" json:"customer_phone,omitempty"`
	CustomerIP      *string `gorm:"column:customer_ip;type:text" json:"customer_ip,omitempty"`

	TotalOrders   int      `gorm:"not null;default:0" json:"total_orders"`
	FlaggedOrders int      `gorm:"not null;default:0" json:"flagged_orders"`
	LostOrders    int      `gorm:"not null;default:0" json:"lost_orders"`
	LossRate      *float64 `gorm:"type:decimal(5,2)" json:"loss_rate,omitempty"`

	LastFlaggedAt *time.Time        `json:"last_flagged_at,omitempty"`
	RiskLevel     *riskdomain.Level `gorm:"type:text" json:"risk_level,omitempty"`
	IsActive      bool              `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CustomerRiskHistory) TableName() string { return "customer_risk_history" }
