package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/store/domain"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
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
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateStoreRequest) (domain.Store, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return domain.Store{}, domain.ErrMissingCompanyName
	}
	registration := strings.TrimSpace(req.CompanyRegistrationNumber)
	if registration == "" {
		return domain.Store{}, domain.ErrMissingRegistrationNo
	}
	storeURL := strings.TrimSpace(req.StoreURL)
	if storeURL == "" {
		return domain.Store{}, domain.ErrMissingStoreURL
	}
	if req.AverageOrdersPerMonth <= 0 {
		return domain.Store{}, domain.ErrInvalidOrderVolume
	}
	if !domain.ValidPlan(req.Plan) {
		return domain.Store{}, domain.ErrInvalidPlan
	}
	if req.Package != nil && !domain.ValidPackage(*req.Package) {
		return domain.Store{}, domain.ErrInvalidPackage
	}

	now := s.clock.Now()
	store := domain.Store{
		ID:                        s.genID.Generate(),
		CompanyName:               companyName,
		CompanyRegistrationNumber: registration,
		StoreURL:                  storeURL,
		AverageOrdersPerMonth:     req.AverageOrdersPerMonth,
		Plan:                      req.Plan,
		Package:                   req.Package,
		Status:                    domain.StatusPendingApproval,
		IsActive:                  false,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &store); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &store.ID,
			Action:     "store.create",
			EntityType: "store",
			EntityID:   store.ID.String(),
			NewValues: map[string]any{
				"company_name": store.CompanyName,
				"plan":         string(store.Plan),
				"status":       string(store.Status),
			},
		})
	})
	if err != nil {
		return domain.Store{}, err
	}

	return store, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Store, error) {
	storeID, err := s.parseID(id)
	if err != nil {
		return domain.Store{}, err
	}

	store, err := s.repo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	if store == nil {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return *store, nil
}

func (s *Service) List(ctx context.Context, req domain.ListStoreRequest) (domain.ListStoreResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListStoreFilter{
		Status:   domain.Status(strings.TrimSpace(req.Status)),
		Plan:     domain.Plan(strings.TrimSpace(req.Plan)),
		IsActive: req.IsActive,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListStoreResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(store *domain.Store) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        store.ID.String(),
			CreatedAt: store.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	stores := make([]domain.Store, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		stores = append(stores, *item)
	}

	resp := domain.ListStoreResponse{Stores: stores}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Approve(ctx context.Context, id string, approverID string) (domain.Store, error) {
	approver, err := snowflake.ParseString(strings.TrimSpace(approverID))
	if err != nil || approver == 0 {
		return domain.Store{}, domain.ErrMissingApprover
	}

	return s.transition(ctx, id, domain.StatusActive, "store.approve", func(store *domain.Store) {
		now := s.clock.Now()
		store.ApprovedAt = &now
		store.ApprovedBy = &approver
	})
}

func (s *Service) Suspend(ctx context.Context, id string) (domain.Store, error) {
	return s.transition(ctx, id, domain.StatusSuspended, "store.suspend", nil)
}

func (s *Service) Reactivate(ctx context.Context, id string) (domain.Store, error) {
	return s.transition(ctx, id, domain.StatusActive, "store.reactivate", nil)
}

func (s *Service) Disable(ctx context.Context, id string) (domain.Store, error) {
	return s.transition(ctx, id, domain.StatusDisabled, "store.disable", nil)
}

func (s *Service) UpdateIntegration(ctx context.Context, req domain.UpdateIntegrationRequest) (domain.Store, error) {
	storeID, err := s.parseID(req.ID)
	if err != nil {
		return domain.Store{}, err
	}

	var updated domain.Store
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.repo.FindByIDForUpdate(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrStoreNotFound
		}

		if req.ShopifyAPIKey != nil {
			store.ShopifyAPIKey = req.ShopifyAPIKey
		}
		if req.ShopifyAPISecret != nil {
			store.ShopifyAPISecret = req.ShopifyAPISecret
		}
		if req.ShopifyWebhookURL != nil {
			store.ShopifyWebhookURL = req.ShopifyWebhookURL
		}
		store.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, store); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &store.ID,
			Action:     "store.update_integration",
			EntityType: "store",
			EntityID:   store.ID.String(),
		}); err != nil {
			return err
		}
		updated = *store
		return nil
	})
	if err != nil {
		return domain.Store{}, err
	}
	return updated, nil
}

// transition applies a guarded lifecycle change under a row lock, emitting
// the audit record in the same transaction.
func (s *Service) transition(ctx context.Context, id string, target domain.Status, action string, mutate func(*domain.Store)) (domain.Store, error) {
	storeID, err := s.parseID(id)
	if err != nil {
		return domain.Store{}, err
	}

	var updated domain.Store
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store, err := s.repo.FindByIDForUpdate(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrStoreNotFound
		}

		if !domain.TransitionAllowed(store.Status, target) {
			return domain.ErrInvalidTransition
		}

		before := store.Status
		store.Status = target
		store.IsActive = target == domain.StatusActive
		if mutate != nil {
			mutate(store)
		}
		store.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, store); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &store.ID,
			Action:     action,
			EntityType: "store",
			EntityID:   store.ID.String(),
			OldValues:  map[string]any{"status": string(before)},
			NewValues:  map[string]any{"status": string(target)},
		}); err != nil {
			return err
		}
		updated = *store
		return nil
	})
	if err != nil {
		return domain.Store{}, err
	}
	return updated, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
