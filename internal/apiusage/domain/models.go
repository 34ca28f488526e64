// Package domain tracks per-store API traffic for plan enforcement and
// support diagnostics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ApiUsage struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`

	Endpoint     string  `gorm:"not null" json:"endpoint"`
	Method       string  `gorm:"not null" json:"method"`
	ResponseTime *int    `gorm:"" json:"response_time,omitempty"`
	StatusCode   *int    `gorm:"" json:"status_code,omitempty"`
	IPAddress    *string `gorm:"" json:"ip_address,omitempty"`
	UserAgent    *string `gorm:"" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ApiUsage) TableName() string { return "api_usage" }
