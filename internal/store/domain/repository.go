package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListStoreFilter struct {
	Status   Status
	Plan     Plan
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, store *Store) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	Update(ctx context.Context, db *gorm.DB, store *Store) error
	List(ctx context.Context, db *gorm.DB, filter ListStoreFilter, page pagination.Pagination) ([]*Store, error)
}
