package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.ApplicationReview) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO application_reviews (
			id, store_id, status, reviewed_by, reviewed_at, review_notes,
			due_diligence_completed, billing_setup_completed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.StoreID,
		review.Status,
		review.ReviewedBy,
		review.ReviewedAt,
		review.ReviewNotes,
		review.DueDiligenceCompleted,
		review.BillingSetupCompleted,
		review.CreatedAt,
		review.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, review *domain.ApplicationReview) error {
	return db.WithContext(ctx).Exec(
		`UPDATE application_reviews SET
			status = ?, reviewed_by = ?, reviewed_at = ?, review_notes = ?,
			due_diligence_completed = ?, billing_setup_completed = ?, updated_at = ?
		 WHERE id = ?`,
		review.Status,
		review.ReviewedBy,
		review.ReviewedAt,
		review.ReviewNotes,
		review.DueDiligenceCompleted,
		review.BillingSetupCompleted,
		review.UpdatedAt,
		review.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ApplicationReview, error) {
	var review domain.ApplicationReview
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM application_reviews WHERE id = ?`, id,
	).Scan(&review).Error
	if err != nil {
		return nil, err
	}
	if review.ID == 0 {
		return nil, nil
	}
	return &review, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ApplicationReview, error) {
	var review domain.ApplicationReview
	query := `SELECT * FROM application_reviews WHERE id = ?`
	if db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, id).Scan(&review).Error
	if err != nil {
		return nil, err
	}
	if review.ID == 0 {
		return nil, nil
	}
	return &review, nil
}

func (r *repo) ListPending(ctx context.Context, db *gorm.DB, limit int) ([]*domain.ApplicationReview, error) {
	var reviews []*domain.ApplicationReview
	stmt := db.WithContext(ctx).Model(&domain.ApplicationReview{}).
		Where("status = ?", domain.ReviewPending).
		Order("created_at asc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
