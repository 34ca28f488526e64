// Package domain stores the records the external auth collaborator reads
// and writes: sessions, provider accounts, verification challenges and MFA
// tokens. Credential issuance itself happens outside this service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Session struct {
	ID        string       `gorm:"primaryKey" json:"id"`
	Token     string       `gorm:"not null;uniqueIndex" json:"token"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	IPAddress *string      `gorm:"" json:"ip_address,omitempty"`
	UserAgent *string      `gorm:"" json:"user_agent,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Session) TableName() string { return "session" }

type Account struct {
	ID         string       `gorm:"primaryKey" json:"id"`
	AccountID  string       `gorm:"not null" json:"account_id"`
	ProviderID string       `gorm:"not null" json:"provider_id"`
	UserID     snowflake.ID `gorm:"not null;index" json:"user_id"`

	AccessToken           *string    `gorm:"" json:"-"`
	RefreshToken          *string    `gorm:"" json:"-"`
	IDToken               *string    `gorm:"column:id_token" json:"-"`
	AccessTokenExpiresAt  *time.Time `gorm:"" json:"access_token_expires_at,omitempty"`
	RefreshTokenExpiresAt *time.Time `gorm:"" json:"refresh_token_expires_at,omitempty"`
	Scope                 *string    `gorm:"" json:"scope,omitempty"`
	Password              *string    `gorm:"" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "account" }

type Verification struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Identifier string    `gorm:"not null" json:"identifier"`
	Value      string    `gorm:"not null" json:"value"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Verification) TableName() string { return "verification" }

type MFATokenType string

const (
	MFATokenSMS   MFATokenType = "sms"
	MFATokenTOTP  MFATokenType = "totp"
	MFATokenEmail MFATokenType = "email"
)

type MFAToken struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Token     string       `gorm:"not null" json:"-"`
	Type      MFATokenType `gorm:"type:text;not null" json:"type"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	IsUsed    bool         `gorm:"not null;default:false" json:"is_used"`
	UsedAt    *time.Time   `gorm:"" json:"used_at,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MFAToken) TableName() string { return "mfa_tokens" }
