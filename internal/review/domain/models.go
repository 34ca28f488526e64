// Package domain holds the onboarding review record the operations team
// works through before a store is approved.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

type ApplicationReview struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`

	Status     ReviewStatus  `gorm:"type:text;not null" json:"status"`
	ReviewedBy *snowflake.ID `gorm:"" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `gorm:"" json:"reviewed_at,omitempty"`

	ReviewNotes           *string `gorm:"" json:"review_notes,omitempty"`
	DueDiligenceCompleted bool    `gorm:"not null;default:false" json:"due_diligence_completed"`
	BillingSetupCompleted bool    `gorm:"not null;default:false" json:"billing_setup_completed"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ApplicationReview) TableName() string { return "application_reviews" }
