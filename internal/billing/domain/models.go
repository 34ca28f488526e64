// Package domain holds the add-on package subscription records exchanged
// with the external billing collaborator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
)

// SubscriptionStatus is the billing lifecycle state.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionSuspended SubscriptionStatus = "suspended"
)

// TransitionAllowed reports whether moving from current to target is a
// legal billing state change. Cancelled is terminal.
func TransitionAllowed(current, target SubscriptionStatus) bool {
	switch current {
	case SubscriptionPending:
		return target == SubscriptionActive || target == SubscriptionCancelled
	case SubscriptionActive:
		return target == SubscriptionSuspended || target == SubscriptionCancelled
	case SubscriptionSuspended:
		return target == SubscriptionActive || target == SubscriptionCancelled
	default:
		return false
	}
}

type PackageSubscription struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`

	Package storedomain.Package `gorm:"type:text;not null" json:"package"`
	Plan    storedomain.Plan    `gorm:"type:text;not null" json:"plan"`
	Status  SubscriptionStatus  `gorm:"type:text;not null" json:"status"`

	GoCardlessMandateID      *string `gorm:"column:go_cardless_mandate_id" json:"go_cardless_mandate_id,omitempty"`
	GoCardlessSubscriptionID *string `gorm:"column:go_cardless_subscription_id" json:"go_cardless_subscription_id,omitempty"`

	MonthlyPrice    *float64   `gorm:"type:decimal(10,2)" json:"monthly_price,omitempty"`
	NextBillingDate *time.Time `gorm:"" json:"next_billing_date,omitempty"`
	CancelledAt     *time.Time `gorm:"" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PackageSubscription) TableName() string { return "package_subscriptions" }
