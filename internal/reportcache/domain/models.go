// Package domain holds cached report results. The TTL is advisory: an
// expired or missing row just triggers recomputation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ReportCache struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	ReportType string            `gorm:"not null;index:idx_report_cache_lookup" json:"report_type"`
	StoreID    *snowflake.ID     `gorm:"index:idx_report_cache_lookup" json:"store_id,omitempty"`
	Parameters datatypes.JSONMap `gorm:"type:jsonb" json:"parameters,omitempty"`
	Result     datatypes.JSON    `gorm:"type:jsonb;not null" json:"result"`
	ExpiresAt  time.Time         `gorm:"not null" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReportCache) TableName() string { return "report_cache" }
