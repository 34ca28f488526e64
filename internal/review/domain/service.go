package domain

import (
	"context"
	"errors"
)

// ChecklistUpdate marks onboarding steps as completed.
type ChecklistUpdate struct {
	DueDiligenceCompleted *bool
	BillingSetupCompleted *bool
}

type Service interface {
	// Open creates a pending review for a newly signed-up store.
	Open(ctx context.Context, storeID string) (ApplicationReview, error)
	UpdateChecklist(ctx context.Context, id string, update ChecklistUpdate) (ApplicationReview, error)

	// Approve completes the review and activates the store. Both
	// checklist items must be done first.
	Approve(ctx context.Context, id string, notes string) (ApplicationReview, error)
	Reject(ctx context.Context, id string, notes string) (ApplicationReview, error)

	ListPending(ctx context.Context, limit int) ([]ApplicationReview, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStore        = errors.New("invalid_store")
	ErrReviewNotFound      = errors.New("review_not_found")
	ErrReviewClosed        = errors.New("review_closed")
	ErrChecklistIncomplete = errors.New("checklist_incomplete")
	ErrMissingReviewer     = errors.New("missing_reviewer")
)
