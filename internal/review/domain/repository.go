package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *ApplicationReview) error
	Update(ctx context.Context, db *gorm.DB, review *ApplicationReview) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ApplicationReview, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ApplicationReview, error)
	ListPending(ctx context.Context, db *gorm.DB, limit int) ([]*ApplicationReview, error)
}
