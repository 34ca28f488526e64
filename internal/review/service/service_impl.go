package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/review/domain"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Stores storedomain.Service
	Audit  auditdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	stores storedomain.Service
	audit  auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("review.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		stores: p.Stores,
		audit:  p.Audit,
	}
}

func (s *Service) Open(ctx context.Context, storeID string) (domain.ApplicationReview, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return domain.ApplicationReview{}, err
	}

	now := s.clock.Now()
	review := domain.ApplicationReview{
		ID:        s.genID.Generate(),
		StoreID:   store.ID,
		Status:    domain.ReviewPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &review); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &review.StoreID,
			Action:     "review.open",
			EntityType: "application_review",
			EntityID:   review.ID.String(),
			NewValues:  map[string]any{"status": string(review.Status)},
		})
	})
	if err != nil {
		return domain.ApplicationReview{}, err
	}

	return review, nil
}

func (s *Service) UpdateChecklist(ctx context.Context, id string, update domain.ChecklistUpdate) (domain.ApplicationReview, error) {
	return s.mutate(ctx, id, "review.checklist", func(review *domain.ApplicationReview) error {
		if update.DueDiligenceCompleted != nil {
			review.DueDiligenceCompleted = *update.DueDiligenceCompleted
		}
		if update.BillingSetupCompleted != nil {
			review.BillingSetupCompleted = *update.BillingSetupCompleted
		}
		return nil
	})
}

func (s *Service) Approve(ctx context.Context, id string, notes string) (domain.ApplicationReview, error) {
	reviewer := strings.TrimSpace(auditctx.ActorFromContext(ctx))
	reviewerID, err := snowflake.ParseString(reviewer)
	if err != nil || reviewerID == 0 {
		return domain.ApplicationReview{}, domain.ErrMissingReviewer
	}

	review, err := s.mutate(ctx, id, "review.approve", func(review *domain.ApplicationReview) error {
		if !review.DueDiligenceCompleted || !review.BillingSetupCompleted {
			return domain.ErrChecklistIncomplete
		}
		now := s.clock.Now()
		review.Status = domain.ReviewApproved
		review.ReviewedBy = &reviewerID
		review.ReviewedAt = &now
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			review.ReviewNotes = &trimmed
		}
		return nil
	})
	if err != nil {
		return domain.ApplicationReview{}, err
	}

	if _, err := s.stores.Approve(ctx, review.StoreID.String(), reviewer); err != nil {
		return domain.ApplicationReview{}, err
	}
	return review, nil
}

func (s *Service) Reject(ctx context.Context, id string, notes string) (domain.ApplicationReview, error) {
	reviewer := strings.TrimSpace(auditctx.ActorFromContext(ctx))
	reviewerID, err := snowflake.ParseString(reviewer)
	if err != nil || reviewerID == 0 {
		return domain.ApplicationReview{}, domain.ErrMissingReviewer
	}

	review, err := s.mutate(ctx, id, "review.reject", func(review *domain.ApplicationReview) error {
		now := s.clock.Now()
		review.Status = domain.ReviewRejected
		review.ReviewedBy = &reviewerID
		review.ReviewedAt = &now
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			review.ReviewNotes = &trimmed
		}
		return nil
	})
	if err != nil {
		return domain.ApplicationReview{}, err
	}

	if _, err := s.stores.Disable(ctx, review.StoreID.String()); err != nil {
		return domain.ApplicationReview{}, err
	}
	return review, nil
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]domain.ApplicationReview, error) {
	if limit <= 0 {
		limit = 50
	}
	items, err := s.repo.ListPending(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.ApplicationReview, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		reviews = append(reviews, *item)
	}
	return reviews, nil
}

func (s *Service) mutate(ctx context.Context, id string, action string, fn func(review *domain.ApplicationReview) error) (domain.ApplicationReview, error) {
	reviewID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || reviewID == 0 {
		return domain.ApplicationReview{}, domain.ErrInvalidID
	}

	var updated domain.ApplicationReview
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.repo.FindByIDForUpdate(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrReviewNotFound
		}
		if review.Status != domain.ReviewPending {
			return domain.ErrReviewClosed
		}

		oldStatus := review.Status
		if err := fn(review); err != nil {
			return err
		}
		review.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, review); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &review.StoreID,
			Action:     action,
			EntityType: "application_review",
			EntityID:   review.ID.String(),
			OldValues:  map[string]any{"status": string(oldStatus)},
			NewValues:  map[string]any{"status": string(review.Status)},
		}); err != nil {
			return err
		}

		updated = *review
		return nil
	})
	if err != nil {
		return domain.ApplicationReview{}, err
	}
	return updated, nil
}
