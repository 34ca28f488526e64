// Package domain holds the outbound email log. Delivery itself is an
// external collaborator that reads pending rows and reports back.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecipientType string

const (
	RecipientOpsTeam        RecipientType = "ops_team"
	RecipientAccountManager RecipientType = "account_manager"
	RecipientStoreAdmin     RecipientType = "store_admin"
)

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryDelivered DeliveryStatus = "delivered"
)

type EmailNotification struct {
	ID      snowflake.ID  `gorm:"primaryKey" json:"id"`
	StoreID *snowflake.ID `gorm:"index" json:"store_id,omitempty"`

	RecipientEmail string        `gorm:"not null" json:"recipient_email"`
	RecipientType  RecipientType `gorm:"type:text;not null" json:"recipient_type"`
	Subject        string        `gorm:"not null" json:"subject"`
	Content        string        `gorm:"not null" json:"content"`

	SentAt       time.Time      `gorm:"not null" json:"sent_at"`
	Status       DeliveryStatus `gorm:"type:text;not null" json:"status"`
	ErrorMessage *string        `gorm:"" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (EmailNotification) TableName() string { return "email_notifications" }
