package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *EmailNotification) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EmailNotification, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status DeliveryStatus, errorMessage *string) error
	ListByStore(ctx context.Context, db *gorm.DB, storeID snowflake.ID, limit int) ([]*EmailNotification, error)
}
