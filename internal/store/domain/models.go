// Package domain contains the tenant-root store aggregate.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the store lifecycle state. Transitions are monotonic except
// for the suspend/reactivate pair; stores are never hard-deleted.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusActive          Status = "active"
	StatusSuspended       Status = "suspended"
	StatusDisabled        Status = "disabled"
)

// Plan is the subscription tier.
type Plan string

const (
	PlanStarter    Plan = "starter"
	PlanGrowth     Plan = "growth"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Package is the optional add-on product.
type Package string

const (
	PackageInsight Package = "ecp_insight"
	PackageVision  Package = "ecp_vision"
	PackageShield  Package = "ecp_shield"
)

// Store is a tenant. All tenant-scoped records reference it.
type Store struct {
	ID                        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyName               string       `gorm:"not null" json:"company_name"`
	CompanyRegistrationNumber string       `gorm:"not null" json:"company_registration_number"`
	StoreURL                  string       `gorm:"column:store_url;not null" json:"store_url"`
	AverageOrdersPerMonth     int          `gorm:"not null" json:"average_orders_per_month"`
	Plan                      Plan         `gorm:"type:text;not null" json:"plan"`
	Package                   *Package     `gorm:"type:text" json:"package,omitempty"`
	Status                    Status       `gorm:"type:text;not null" json:"status"`

	ShopifyAPIKey     *string `gorm:"column:shopify_api_key" json:"-"`
	ShopifyAPISecret  *string `gorm:"column:shopify_api_secret" json:"-"`
	ShopifyWebhookURL *string `gorm:"column:shopify_webhook_url" json:"shopify_webhook_url,omitempty"`

	// IsActive mirrors Status == active for fast filtering.
	IsActive   bool          `gorm:"not null;default:false" json:"is_active"`
	ApprovedAt *time.Time    `gorm:"" json:"approved_at,omitempty"`
	ApprovedBy *snowflake.ID `gorm:"" json:"approved_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

// TransitionAllowed reports whether moving from current to target is a
// legal lifecycle change.
func TransitionAllowed(current, target Status) bool {
	switch current {
	case StatusPendingApproval:
		return target == StatusActive || target == StatusDisabled
	case StatusActive:
		return target == StatusSuspended || target == StatusDisabled
	case StatusSuspended:
		return target == StatusActive || target == StatusDisabled
	default:
		return false
	}
}

// ValidPlan reports whether p is a known subscription tier.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanStarter, PlanGrowth, PlanPro, PlanEnterprise:
		return true
	default:
		return false
	}
}

// ValidPackage reports whether p is a known add-on package.
func ValidPackage(p Package) bool {
	switch p {
	case PackageInsight, PackageVision, PackageShield:
		return true
	default:
		return false
	}
}
