package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Get(ctx context.Context) (domain.StoreSettings, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.StoreSettings{}, domain.ErrInvalidStore
	}

	existing, err := s.repo.FindByStoreID(ctx, s.db, storeID)
	if err != nil {
		return domain.StoreSettings{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := s.clock.Now()
	settings := domain.Defaults(storeID)
	settings.ID = s.genID.Generate()
	settings.CreatedAt = now
	settings.UpdatedAt = now
	if err := s.repo.Insert(ctx, s.db, &settings); err != nil {
		return domain.StoreSettings{}, err
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSettingsRequest) (domain.StoreSettings, error) {
	if err := validate(req); err != nil {
		return domain.StoreSettings{}, err
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return domain.StoreSettings{}, err
	}

	before := snapshot(settings)
	apply(&settings, req)
	settings.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, &settings); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    &settings.StoreID,
			Action:     "settings.update",
			EntityType: "store_settings",
			EntityID:   settings.ID.String(),
			OldValues:  before,
			NewValues:  snapshot(settings),
		})
	})
	if err != nil {
		return domain.StoreSettings{}, err
	}

	return settings, nil
}

func validate(req domain.UpdateSettingsRequest) error {
	if req.LostParcelThreshold != nil && *req.LostParcelThreshold < 1 {
		return domain.ErrInvalidThreshold
	}
	if req.LossRateThreshold != nil && (*req.LossRateThreshold <= 0 || *req.LossRateThreshold > 1) {
		return domain.ErrInvalidThreshold
	}
	if req.TimePeriodMonths != nil && *req.TimePeriodMonths < 1 {
		return domain.ErrInvalidTimePeriod
	}
	if req.MatchSensitivity != nil {
		switch *req.MatchSensitivity {
		case domain.SensitivityLow, domain.SensitivityMedium, domain.SensitivityHigh:
		default:
			return domain.ErrInvalidSensitivity
		}
	}
	if req.ActionType != nil {
		switch *req.ActionType {
		case domain.ActionFulfillmentHold, domain.ActionAutoCancel, domain.ActionNotifyOnly:
		default:
			return domain.ErrInvalidActionType
		}
	}
	return nil
}

func apply(settings *domain.StoreSettings, req domain.UpdateSettingsRequest) {
	if req.LostParcelThreshold != nil {
		settings.LostParcelThreshold = *req.LostParcelThreshold
	}
	if req.ClearLossRate {
		settings.LossRateThreshold = nil
	} else if req.LossRateThreshold != nil {
		settings.LossRateThreshold = req.LossRateThreshold
	}
	if req.TimePeriodMonths != nil {
		settings.TimePeriodMonths = *req.TimePeriodMonths
	}
	if req.MatchSensitivity != nil {
		settings.MatchSensitivity = *req.MatchSensitivity
	}
	if req.ActionType != nil {
		settings.ActionType = *req.ActionType
	}
	if req.RequireCustomerSignature != nil {
		settings.RequireCustomerSignature = *req.RequireCustomerSignature
	}
	if req.ForceSignedDelivery != nil {
		settings.ForceSignedDelivery = *req.ForceSignedDelivery
	}
	if req.RequirePhotoOnDelivery != nil {
		settings.RequirePhotoOnDelivery = *req.RequirePhotoOnDelivery
	}
	if req.SendCancellationEmail != nil {
		settings.SendCancellationEmail = *req.SendCancellationEmail
	}
	if req.IncludeWaiverLink != nil {
		settings.IncludeWaiverLink = *req.IncludeWaiverLink
	}
	if req.EmailNotificationsEnabled != nil {
		settings.EmailNotificationsEnabled = *req.EmailNotificationsEnabled
	}
	if req.NotificationRecipients != nil {
		recipients := make([]string, 0, len(req.NotificationRecipients))
		for _, r := range req.NotificationRecipients {
			r = strings.TrimSpace(r)
			if r != "" {
				recipients = append(recipients, r)
			}
		}
		if raw, err := json.Marshal(recipients); err == nil {
			settings.NotificationRecipients = datatypes.JSON(raw)
		}
	}
	if req.IncludeOrderDetails != nil {
		settings.IncludeOrderDetails = *req.IncludeOrderDetails
	}
	if req.IncludeReasonForFlag != nil {
		settings.IncludeReasonForFlag = *req.IncludeReasonForFlag
	}
	if req.IncludeRecommendedAction != nil {
		settings.IncludeRecommendedAction = *req.IncludeRecommendedAction
	}
	if req.ActionDelayHours != nil {
		settings.ActionDelayHours = req.ActionDelayHours
	}
	if req.ShopifyIntegrationEnabled != nil {
		settings.ShopifyIntegrationEnabled = *req.ShopifyIntegrationEnabled
	}
}

func snapshot(settings domain.StoreSettings) map[string]any {
	values := map[string]any{
		"lost_parcel_threshold": settings.LostParcelThreshold,
		"time_period_months":    settings.TimePeriodMonths,
		"match_sensitivity":     string(settings.MatchSensitivity),
		"action_type":           string(settings.ActionType),
	}
	if settings.LossRateThreshold != nil {
		values["loss_rate_threshold"] = *settings.LossRateThreshold
	}
	return values
}
