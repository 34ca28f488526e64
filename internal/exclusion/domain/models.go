package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// CustomerExclusion is an allowlist entry suppressing risk flags for a
// trusted customer identity. Entries deactivate rather than delete.
type CustomerExclusion struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID         snowflake.ID `gorm:"not null;index" json:"store_id"`
	CustomerEmail   *string      `gorm:"type:text" json:"customer_email,omitempty"`
	CustomerAddress *string      `gorm:"type:text" json:"customer_address,omitempty"`
	CustomerPhone   *string      `gorm:"type:text" json:"customer_phone,omitempty"`
	Reason          *string      `gorm:"type:text" json:"reason,omitempty"`
	IsActive        bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerExclusion) TableName() string { return "customer_exclusions" }

// Matches reports whether the exclusion covers the given customer
// identity. Any populated identity field matching is sufficient.
func (e CustomerExclusion) Matches(email, address, phone string) bool {
	if !e.IsActive {
		return false
	}
	if e.CustomerEmail != nil && equalFold(*e.CustomerEmail, email) {
		return true
	}
	if e.CustomerAddress != nil && equalFold(*e.CustomerAddress, address) {
		return true
	}
	if e.CustomerPhone != nil && equalDigits(*e.CustomerPhone, phone) {
		return true
	}
	return false
}

func equalFold(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// equalDigits compares phone numbers ignoring spacing and punctuation.
func equalDigits(a, b string) bool {
	a = digitsOnly(a)
	b = digitsOnly(b)
	if a == "" || b == "" {
		return false
	}
	return a == b
}

func digitsOnly(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
