package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/exclusion/domain"
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
		log:   p.Log.Named("exclusion.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateExclusionRequest) (domain.CustomerExclusion, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.CustomerExclusion{}, domain.ErrInvalidStore
	}

	email := strings.TrimSpace(req.CustomerEmail)
	address := strings.TrimSpace(req.CustomerAddress)
	phone := strings.TrimSpace(req.CustomerPhone)
	if email == "" && address == "" && phone == "" {
		return domain.CustomerExclusion{}, domain.ErrMissingIdentity
	}

	now := s.clock.Now()
	exclusion := domain.CustomerExclusion{
		ID:        s.genID.Generate(),
		StoreID:   storeID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if email != "" {
		exclusion.CustomerEmail = &email
	}
	if address != "" {
		exclusion.CustomerAddress = &address
	}
	if phone != "" {
		exclusion.CustomerPhone = &phone
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		exclusion.Reason = &reason
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &exclusion); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     "exclusion.create",
			EntityType: "customer_exclusion",
			EntityID:   exclusion.ID.String(),
			NewValues:  map[string]any{"customer_email": email},
		})
	})
	if err != nil {
		return domain.CustomerExclusion{}, err
	}

	return exclusion, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.CustomerExclusion, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	items, err := s.repo.ListActive(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}

	exclusions := make([]domain.CustomerExclusion, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		exclusions = append(exclusions, *item)
	}
	return exclusions, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ErrInvalidStore
	}

	exclusionID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || exclusionID == 0 {
		return domain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exclusion, err := s.repo.FindByID(ctx, tx, storeID, exclusionID)
		if err != nil {
			return err
		}
		if exclusion == nil {
			return domain.ErrExclusionNotFound
		}
		if !exclusion.IsActive {
			return nil
		}

		exclusion.IsActive = false
		exclusion.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, exclusion); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     "exclusion.deactivate",
			EntityType: "customer_exclusion",
			EntityID:   exclusion.ID.String(),
			OldValues:  map[string]any{"is_active": true},
			NewValues:  map[string]any{"is_active": false},
		})
	})
}

func (s *Service) Match(ctx context.Context, email, address, phone string) (bool, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return false, domain.ErrInvalidStore
	}

	items, err := s.repo.ListActive(ctx, s.db, storeID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item != nil && item.Matches(email, address, phone) {
			return true, nil
		}
	}
	return false, nil
}
