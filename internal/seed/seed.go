// Package seed bootstraps the records a fresh deployment needs before
// anyone can log in.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/ecomprotect/sentinel/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsurePlatformAdmin creates the initial ecp_admin user when no platform
// admin exists yet. Re-running is a no-op.
func EnsurePlatformAdmin(db *gorm.DB, node *snowflake.Node, email, password string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("seed admin credentials are required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&userdomain.User{}).
			Where("role = ?", userdomain.RoleECPAdmin).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		admin := userdomain.User{
			ID:           node.Generate(),
			FullName:     "Platform Admin",
			Email:        email,
			PasswordHash: string(hash),
			Role:         userdomain.RoleECPAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&admin).Error
	})
}
