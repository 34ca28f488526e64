package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (
			id, full_name, email, mobile_number, password, role, store_id,
			is_active, email_verified, mfa_enabled, last_login_at,
			image, image_public_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FullName,
		user.Email,
		user.MobileNumber,
		user.PasswordHash,
		user.Role,
		user.StoreID,
		user.IsActive,
		user.EmailVerified,
		user.MFAEnabled,
		user.LastLoginAt,
		user.Image,
		user.ImagePublicID,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE id = ?`, id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE lower(email) = ?`, strings.ToLower(email),
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]*domain.User, error) {
	var users []*domain.User
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("store_id = ?", storeID).
		Order("created_at asc, id asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET
			full_name = ?, email = ?, mobile_number = ?, password = ?, role = ?,
			store_id = ?, is_active = ?, email_verified = ?, mfa_enabled = ?,
			last_login_at = ?, image = ?, image_public_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.FullName,
		user.Email,
		user.MobileNumber,
		user.PasswordHash,
		user.Role,
		user.StoreID,
		user.IsActive,
		user.EmailVerified,
		user.MFAEnabled,
		user.LastLoginAt,
		user.Image,
		user.ImagePublicID,
		user.UpdatedAt,
		user.ID,
	).Error
}
