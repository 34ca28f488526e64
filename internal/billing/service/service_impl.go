package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/billing/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Audit auditdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	audit auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billing.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.PackageSubscription, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.PackageSubscription{}, domain.ErrInvalidStore
	}
	if !storedomain.ValidPackage(req.Package) {
		return domain.PackageSubscription{}, domain.ErrInvalidPackage
	}
	if !storedomain.ValidPlan(req.Plan) {
		return domain.PackageSubscription{}, domain.ErrInvalidPlan
	}

	now := s.clock.Now()
	subscription := domain.PackageSubscription{
		ID:        s.genID.Generate(),
		StoreID:   storeID,
		Package:   req.Package,
		Plan:      req.Plan,
		Status:    domain.SubscriptionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &subscription); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     "subscription.create",
			EntityType: "package_subscription",
			EntityID:   subscription.ID.String(),
			NewValues: map[string]any{
				"package": string(subscription.Package),
				"plan":    string(subscription.Plan),
				"status":  string(subscription.Status),
			},
		})
	})
	if err != nil {
		return domain.PackageSubscription{}, err
	}

	return subscription, nil
}

func (s *Service) Activate(ctx context.Context, req domain.ActivateSubscriptionRequest) (domain.PackageSubscription, error) {
	mandate := strings.TrimSpace(req.GoCardlessMandateID)
	if mandate == "" {
		return domain.PackageSubscription{}, domain.ErrMissingMandate
	}

	return s.transition(ctx, req.ID, domain.SubscriptionActive, "subscription.activate", func(subscription *domain.PackageSubscription) {
		subscription.GoCardlessMandateID = &mandate
		if v := strings.TrimSpace(req.GoCardlessSubscriptionID); v != "" {
			subscription.GoCardlessSubscriptionID = &v
		}
		if req.MonthlyPrice > 0 {
			price := req.MonthlyPrice
			subscription.MonthlyPrice = &price
		}
		if !req.NextBillingDate.IsZero() {
			next := req.NextBillingDate
			subscription.NextBillingDate = &next
		}
	})
}

func (s *Service) Suspend(ctx context.Context, id string) (domain.PackageSubscription, error) {
	return s.transition(ctx, id, domain.SubscriptionSuspended, "subscription.suspend", nil)
}

func (s *Service) Reactivate(ctx context.Context, id string) (domain.PackageSubscription, error) {
	return s.transition(ctx, id, domain.SubscriptionActive, "subscription.reactivate", nil)
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.PackageSubscription, error) {
	return s.transition(ctx, id, domain.SubscriptionCancelled, "subscription.cancel", func(subscription *domain.PackageSubscription) {
		now := s.clock.Now()
		subscription.CancelledAt = &now
	})
}

func (s *Service) ListByStore(ctx context.Context) ([]domain.PackageSubscription, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	items, err := s.repo.ListByStore(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}
	subscriptions := make([]domain.PackageSubscription, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		subscriptions = append(subscriptions, *item)
	}
	return subscriptions, nil
}

func (s *Service) transition(ctx context.Context, id string, target domain.SubscriptionStatus, action string, apply func(*domain.PackageSubscription)) (domain.PackageSubscription, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.PackageSubscription{}, domain.ErrInvalidStore
	}
	subscriptionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || subscriptionID == 0 {
		return domain.PackageSubscription{}, domain.ErrInvalidID
	}

	var updated domain.PackageSubscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByIDForUpdate(ctx, tx, storeID, subscriptionID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return domain.ErrSubscriptionNotFound
		}
		if !domain.TransitionAllowed(subscription.Status, target) {
			return domain.ErrInvalidState
		}

		oldStatus := subscription.Status
		subscription.Status = target
		subscription.UpdatedAt = s.clock.Now()
		if apply != nil {
			apply(subscription)
		}

		if err := s.repo.Update(ctx, tx, subscription); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     action,
			EntityType: "package_subscription",
			EntityID:   subscription.ID.String(),
			OldValues:  map[string]any{"status": string(oldStatus)},
			NewValues:  map[string]any{"status": string(subscription.Status)},
		}); err != nil {
			return err
		}

		updated = *subscription
		return nil
	})
	if err != nil {
		return domain.PackageSubscription{}, err
	}
	return updated, nil
}
