package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.EmailNotification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO email_notifications (
			id, store_id, recipient_email, recipient_type, subject, content,
			sent_at, status, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.StoreID,
		notification.RecipientEmail,
		notification.RecipientType,
		notification.Subject,
		notification.Content,
		notification.SentAt,
		notification.Status,
		notification.ErrorMessage,
		notification.CreatedAt,
		notification.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.EmailNotification, error) {
	var notification domain.EmailNotification
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM email_notifications WHERE id = ?`, id,
	).Scan(&notification).Error
	if err != nil {
		return nil, err
	}
	if notification.ID == 0 {
		return nil, nil
	}
	return &notification, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.DeliveryStatus, errorMessage *string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE email_notifications SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, errorMessage, id,
	).Error
}

func (r *repo) ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID, limit int) ([]*domain.EmailNotification, error) {
	var notifications []*domain.EmailNotification
	stmt := db.WithContext(ctx).Model(&domain.EmailNotification{}).
		Where("store_id = ?", storeID).
		Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
