package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AuditLog is the append-only system of record for compliance. Rows are
// never updated or deleted once written.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID     *snowflake.ID     `gorm:"index" json:"user_id,omitempty"`
	StoreID    *snowflake.ID     `gorm:"index" json:"store_id,omitempty"`
	Action     string            `gorm:"type:text;not null" json:"action"`
	EntityType string            `gorm:"type:text;not null" json:"entity_type"`
	EntityID   *string           `gorm:"type:text" json:"entity_id,omitempty"`
	OldValues  datatypes.JSONMap `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues  datatypes.JSONMap `gorm:"type:jsonb" json:"new_values,omitempty"`
	IPAddress  *string           `gorm:"type:text" json:"ip_address,omitempty"`
	UserAgent  *string           `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_log" }

// AuditCursor is the keyset position for paging the log.
type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
