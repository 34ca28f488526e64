// Package domain contains the per-store risk detection configuration.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// MatchSensitivity controls how aggressively customer history is matched
// against the store's thresholds.
type MatchSensitivity string

const (
	SensitivityLow    MatchSensitivity = "low"
	SensitivityMedium MatchSensitivity = "medium"
	SensitivityHigh   MatchSensitivity = "high"
)

// ThresholdFactor returns the multiplier applied to the configured
// thresholds. Low sensitivity widens tolerance, high tightens it.
func (s MatchSensitivity) ThresholdFactor() float64 {
	switch s {
	case SensitivityLow:
		return 1.5
	case SensitivityHigh:
		return 0.5
	default:
		return 1.0
	}
}

// ActionType is the automated response applied to a flagged order.
type ActionType string

const (
	ActionFulfillmentHold ActionType = "fulfillment_hold"
	ActionAutoCancel      ActionType = "auto_cancel"
	ActionNotifyOnly      ActionType = "notify_only"
)

// StoreSettings holds risk thresholds, the response policy and notification
// preferences. Exactly one row exists per store and is removed with it.
type StoreSettings struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;uniqueIndex" json:"store_id"`

	LostParcelThreshold int              `gorm:"not null" json:"lost_parcel_threshold"`
	LossRateThreshold   *float64         `gorm:"type:decimal(5,2)" json:"loss_rate_threshold,omitempty"`
	TimePeriodMonths    int              `gorm:"not null" json:"time_period_months"`
	MatchSensitivity    MatchSensitivity `gorm:"type:text;not null" json:"match_sensitivity"`

	ActionType               ActionType `gorm:"type:text;not null" json:"action_type"`
	RequireCustomerSignature bool       `gorm:"not null;default:false" json:"require_customer_signature"`
	ForceSignedDelivery      bool       `gorm:"not null;default:false" json:"force_signed_delivery"`
	RequirePhotoOnDelivery   bool       `gorm:"not null;default:false" json:"require_photo_on_delivery"`
	SendCancellationEmail    bool       `gorm:"not null;default:false" json:"send_cancellation_email"`
	IncludeWaiverLink        bool       `gorm:"not null;default:false" json:"include_waiver_link"`

	EmailNotificationsEnabled bool           `gorm:"not null;default:true" json:"email_notifications_enabled"`
	NotificationRecipients    datatypes.JSON `gorm:"type:jsonb" json:"notification_recipients,omitempty"`
	IncludeOrderDetails       bool           `gorm:"not null;default:true" json:"include_order_details"`
	IncludeReasonForFlag      bool           `gorm:"not null;default:true" json:"include_reason_for_flag"`
	IncludeRecommendedAction  bool           `gorm:"not null;default:true" json:"include_recommended_action"`

	ActionDelayHours          *int `gorm:"" json:"action_delay_hours,omitempty"`
	ShopifyIntegrationEnabled bool `gorm:"not null;default:true" json:"shopify_integration_enabled"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (StoreSettings) TableName() string { return "store_settings" }

// Defaults returns settings pre-filled with the platform defaults for a
// newly approved store.
func Defaults(storeID snowflake.ID) StoreSettings {
	return StoreSettings{
		StoreID:                   storeID,
		LostParcelThreshold:       3,
		TimePeriodMonths:          6,
		MatchSensitivity:          SensitivityMedium,
		ActionType:                ActionFulfillmentHold,
		EmailNotificationsEnabled: true,
		IncludeOrderDetails:       true,
		IncludeReasonForFlag:      true,
		IncludeRecommendedAction:  true,
		ShopifyIntegrationEnabled: true,
	}
}
