package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the fixed set of platform roles. The ecp_* roles are
// platform-level and carry no store reference.
type Role string

const (
	RoleCustomerAdmin     Role = "customer_admin"
	RoleSubUser           Role = "sub_user"
	RoleECPAdmin          Role = "ecp_admin"
	RoleECPOperations     Role = "ecp_operations"
	RoleECPAccountManager Role = "ecp_account_manager"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomerAdmin, RoleSubUser, RoleECPAdmin, RoleECPOperations, RoleECPAccountManager:
		return true
	default:
		return false
	}
}

// Platform reports whether the role operates across tenants.
func (r Role) Platform() bool {
	switch r {
	case RoleECPAdmin, RoleECPOperations, RoleECPAccountManager:
		return true
	default:
		return false
	}
}

// User belongs to at most one store; platform roles leave StoreID nil.
// Deleting a store nulls the reference rather than cascading.
type User struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	FullName      string        `gorm:"not null" json:"full_name"`
	Email         string        `gorm:"not null;uniqueIndex" json:"email"`
	MobileNumber  string        `gorm:"not null" json:"mobile_number"`
	PasswordHash  string        `gorm:"column:password;not null" json:"-"`
	Role          Role          `gorm:"type:text;not null" json:"role"`
	StoreID       *snowflake.ID `gorm:"index" json:"store_id,omitempty"`
	IsActive      bool          `gorm:"not null;default:true" json:"is_active"`
	EmailVerified bool          `gorm:"not null;default:false" json:"email_verified"`
	MFAEnabled    bool          `gorm:"column:mfa_enabled;not null;default:false" json:"mfa_enabled"`
	LastLoginAt   *time.Time    `gorm:"" json:"last_login_at,omitempty"`
	Image         *string       `gorm:"type:text" json:"image,omitempty"`
	ImagePublicID *string       `gorm:"type:text" json:"image_public_id,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
