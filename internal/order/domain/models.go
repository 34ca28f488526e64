// Package domain contains the order aggregate and its lifecycle state
// machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
	"gorm.io/datatypes"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending       Status = "pending"
	StatusFlagged       Status = "flagged"
	StatusHeldForReview Status = "held_for_review"
	StatusAutoCancelled Status = "auto_cancelled"
	StatusFulfilled     Status = "fulfilled"
	StatusCancelled     Status = "cancelled"
)

// TransitionAllowed reports whether moving from current to target is a
// legal lifecycle change. Fulfilled, cancelled and auto_cancelled are
// terminal.
func TransitionAllowed(current, target Status) bool {
	switch current {
	case StatusPending:
		return target == StatusFlagged || target == StatusFulfilled || target == StatusCancelled
	case StatusFlagged:
		return target == StatusHeldForReview || target == StatusAutoCancelled ||
			target == StatusFulfilled || target == StatusCancelled
	case StatusHeldForReview:
		return target == StatusFulfilled || target == StatusCancelled
	default:
		return false
	}
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusCancelled || s == StatusAutoCancelled
}

// Address is the structured shipping address captured with the order.
type Address struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

// Line renders the address as a single comparable line for exclusion
// matching.
func (a Address) Line() string {
	return a.Address1 + " " + a.City + " " + a.Postcode
}

type Order struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID snowflake.ID `gorm:"not null;index" json:"store_id"`

	ShopifyOrderID    *string `gorm:"column:shopify_order_id" json:"shopify_order_id,omitempty"`
	OrderNumber       string  `gorm:"not null" json:"order_number"`
	CustomerEmail     string  `gorm:"not null;index" json:"customer_email"`
	CustomerFirstName string  `gorm:"not null" json:"customer_first_name"`
	CustomerLastName  string  `gorm:"not null" json:"customer_last_name"`

	CustomerAddress *datatypes.JSONType[Address] `gorm:"type:jsonb" json:"customer_address,omitempty"`
	CustomerPhone   *string                      `gorm:"" json:"customer_phone,omitempty"`
	CustomerIP      *string                      `gorm:"column:customer_ip" json:"customer_ip,omitempty"`

	OrderValue     float64 `gorm:"type:decimal(10,2);not null" json:"order_value"`
	Currency       string  `gorm:"not null" json:"currency"`
	DeliveryMethod *string `gorm:"" json:"delivery_method,omitempty"`

	Status Status `gorm:"type:text;not null" json:"status"`

	// RiskLevel is set only when the order is flagged, so IsFlagged is
	// true exactly when RiskLevel is non-nil.
	RiskLevel  *riskdomain.Level `gorm:"type:text" json:"risk_level,omitempty"`
	RiskScore  *int              `gorm:"" json:"risk_score,omitempty"`
	RiskReason *string           `gorm:"" json:"risk_reason,omitempty"`

	IsFlagged bool          `gorm:"not null;default:false" json:"is_flagged"`
	FlaggedAt *time.Time    `gorm:"" json:"flagged_at,omitempty"`
	FlaggedBy *snowflake.ID `gorm:"" json:"flagged_by,omitempty"`

	ReviewNotes   *string       `gorm:"" json:"review_notes,omitempty"`
	ActionTaken   *string       `gorm:"" json:"action_taken,omitempty"`
	ActionTakenAt *time.Time    `gorm:"" json:"action_taken_at,omitempty"`
	ActionTakenBy *snowflake.ID `gorm:"" json:"action_taken_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderCursor is the keyset position for paging order listings.
type OrderCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
