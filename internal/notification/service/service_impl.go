package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/notification/domain"
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
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Enqueue(ctx context.Context, req domain.EnqueueRequest) (domain.EmailNotification, error) {
	recipient := strings.TrimSpace(req.RecipientEmail)
	if recipient == "" {
		return domain.EmailNotification{}, domain.ErrMissingRecipient
	}

	now := s.clock.Now()
	notification := domain.EmailNotification{
		ID:             s.genID.Generate(),
		RecipientEmail: recipient,
		RecipientType:  req.RecipientType,
		Subject:        strings.TrimSpace(req.Subject),
		Content:        req.Content,
		SentAt:         now,
		Status:         domain.DeliverySent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if storeID, ok := storectx.StoreIDFromContext(ctx); ok && storeID != 0 {
		notification.StoreID = &storeID
	}
	if notification.RecipientType == "" {
		notification.RecipientType = domain.RecipientStoreAdmin
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.EmailNotification{}, err
	}
	return notification, nil
}

func (s *Service) ReportDelivery(ctx context.Context, id string, status domain.DeliveryStatus, errorMessage string) error {
	notificationID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || notificationID == 0 {
		return domain.ErrInvalidID
	}
	switch status {
	case domain.DeliverySent, domain.DeliveryFailed, domain.DeliveryDelivered:
	default:
		return domain.ErrInvalidStatus
	}

	notification, err := s.repo.FindByID(ctx, s.db, notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return domain.ErrNotificationNotFound
	}

	var message *string
	if trimmed := strings.TrimSpace(errorMessage); trimmed != "" {
		message = &trimmed
	}
	return s.repo.UpdateStatus(ctx, s.db, notificationID, status, message)
}

func (s *Service) ListByStore(ctx context.Context, limit int) ([]domain.EmailNotification, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	if limit <= 0 {
		limit = 50
	}

	items, err := s.repo.ListByStore(ctx, s.db, storeID, limit)
	if err != nil {
		return nil, err
	}
	notifications := make([]domain.EmailNotification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}
	return notifications, nil
}
