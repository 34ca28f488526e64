package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/observability"
	"github.com/ecomprotect/sentinel/internal/order/domain"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultCurrency = "GBP"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	StoreRepo storedomain.Repository
	Audit     auditdomain.Service
	Metrics   *observability.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	storeRepo storedomain.Repository
	audit     auditdomain.Service
	metrics   *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		storeRepo: p.StoreRepo,
		audit:     p.Audit,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.Order{}, domain.ErrInvalidStore
	}

	email := strings.TrimSpace(req.CustomerEmail)
	orderNumber := strings.TrimSpace(req.OrderNumber)
	if email == "" || orderNumber == "" || req.OrderValue <= 0 {
		return domain.Order{}, domain.ErrValidation
	}

	store, err := s.storeRepo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.Order{}, err
	}
	if store == nil {
		return domain.Order{}, domain.ErrStoreNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:                s.genID.Generate(),
		StoreID:           storeID,
		OrderNumber:       orderNumber,
		CustomerEmail:     strings.ToLower(email),
		CustomerFirstName: strings.TrimSpace(req.CustomerFirstName),
		CustomerLastName:  strings.TrimSpace(req.CustomerLastName),
		OrderValue:        req.OrderValue,
		Currency:          currency,
		Status:            domain.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if v := strings.TrimSpace(req.ShopifyOrderID); v != "" {
		order.ShopifyOrderID = &v
	}
	if req.CustomerAddress != nil {
		address := datatypes.NewJSONType(*req.CustomerAddress)
		order.CustomerAddress = &address
	}
	if v := strings.TrimSpace(req.CustomerPhone); v != "" {
		order.CustomerPhone = &v
	}
	if v := strings.TrimSpace(req.CustomerIP); v != "" {
		order.CustomerIP = &v
	}
	if v := strings.TrimSpace(req.DeliveryMethod); v != "" {
		order.DeliveryMethod = &v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     "order.create",
			EntityType: "order",
			EntityID:   order.ID.String(),
			NewValues: map[string]any{
				"order_number":   order.OrderNumber,
				"customer_email": order.CustomerEmail,
				"status":         string(order.Status),
			},
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.OrdersCreated.Inc()
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.Order{}, domain.ErrInvalidStore
	}
	orderID, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, storeID, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ListOrderResponse{}, domain.ErrInvalidStore
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListOrderFilter{
		StoreID:       storeID,
		Status:        req.Status,
		IsFlagged:     req.IsFlagged,
		CustomerEmail: req.CustomerEmail,
		Limit:         pageSize,
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := decodeOrderCursor(token)
		if err != nil {
			return domain.ListOrderResponse{}, domain.ErrInvalidPageToken
		}
		filter.Cursor = cursor
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}

	resp := domain.ListOrderResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Flag(ctx context.Context, id string, details domain.FlagDetails) (domain.Order, error) {
	if !details.Level.Valid() {
		return domain.Order{}, domain.ErrValidation
	}
	return s.mutate(ctx, id, "order.flag", func(order *domain.Order, now time.Time) error {
		if order.Status != domain.StatusPending {
			return domain.ErrInvalidState
		}

		order.Status = domain.StatusFlagged
		order.IsFlagged = true
		order.FlaggedAt = &now
		order.FlaggedBy = actorID(ctx)

		score := details.Score
		order.RiskScore = &score
		level := details.Level
		order.RiskLevel = &level
		if reason := strings.TrimSpace(details.Reason); reason != "" {
			order.RiskReason = &reason
		}
		return nil
	})
}

func (s *Service) ApplyAction(ctx context.Context, id string, action settingsdomain.ActionType, notes string) (domain.Order, error) {
	var target domain.Status
	switch action {
	case settingsdomain.ActionFulfillmentHold:
		target = domain.StatusHeldForReview
	case settingsdomain.ActionAutoCancel:
		target = domain.StatusAutoCancelled
	case settingsdomain.ActionNotifyOnly:
		// Recorded on the order without a status change.
	default:
		return domain.Order{}, domain.ErrInvalidAction
	}

	order, err := s.mutate(ctx, id, "order.action", func(order *domain.Order, now time.Time) error {
		if order.Status != domain.StatusFlagged {
			return domain.ErrInvalidState
		}
		if target != "" {
			if !domain.TransitionAllowed(order.Status, target) {
				return domain.ErrInvalidState
			}
			order.Status = target
		}

		taken := string(action)
		order.ActionTaken = &taken
		order.ActionTakenAt = &now
		order.ActionTakenBy = actorID(ctx)
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			order.ReviewNotes = &trimmed
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.metrics.IncrementAction(string(action))
	return order, nil
}

func (s *Service) Fulfill(ctx context.Context, id string) (domain.Order, error) {
	return s.mutate(ctx, id, "order.fulfill", func(order *domain.Order, now time.Time) error {
		if !domain.TransitionAllowed(order.Status, domain.StatusFulfilled) {
			return domain.ErrInvalidState
		}
		order.Status = domain.StatusFulfilled
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Order, error) {
	return s.mutate(ctx, id, "order.cancel", func(order *domain.Order, now time.Time) error {
		if !domain.TransitionAllowed(order.Status, domain.StatusCancelled) {
			return domain.ErrInvalidState
		}
		order.Status = domain.StatusCancelled
		return nil
	})
}

// mutate loads the order under a row lock, applies fn and writes the
// result with its audit entry in one transaction.
func (s *Service) mutate(ctx context.Context, id string, action string, fn func(order *domain.Order, now time.Time) error) (domain.Order, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.Order{}, domain.ErrInvalidStore
	}
	orderID, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}

	var updated domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, storeID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}

		oldStatus := order.Status
		now := s.clock.Now()
		if err := fn(order, now); err != nil {
			return err
		}
		order.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &storeID,
			Action:     action,
			EntityType: "order",
			EntityID:   order.ID.String(),
			OldValues:  map[string]any{"status": string(oldStatus)},
			NewValues:  map[string]any{"status": string(order.Status)},
		}); err != nil {
			return err
		}

		updated = *order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

func actorID(ctx context.Context) *snowflake.ID {
	actor := auditctx.ActorFromContext(ctx)
	if actor == "" {
		return nil
	}
	id, err := snowflake.ParseString(actor)
	if err != nil || id == 0 {
		return nil
	}
	return &id
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func decodeOrderCursor(token string) (*domain.OrderCursor, error) {
	cursor, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, err
	}
	id, err := snowflake.ParseString(cursor.ID)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.OrderCursor{ID: id, CreatedAt: createdAt}, nil
}
