package domain

import (
	"context"
	"errors"
)

type UpdateSettingsRequest struct {
	LostParcelThreshold *int
	LossRateThreshold   *float64
	ClearLossRate       bool
	TimePeriodMonths    *int
	MatchSensitivity    *MatchSensitivity
	ActionType          *ActionType

	RequireCustomerSignature *bool
	ForceSignedDelivery      *bool
	RequirePhotoOnDelivery   *bool
	SendCancellationEmail    *bool
	IncludeWaiverLink        *bool

	EmailNotificationsEnabled *bool
	NotificationRecipients    []string
	IncludeOrderDetails       *bool
	IncludeReasonForFlag      *bool
	IncludeRecommendedAction  *bool

	ActionDelayHours          *int
	ShopifyIntegrationEnabled *bool
}

type Service interface {
	// Get returns the settings for the store in context, creating the
	// default row when none exists yet.
	Get(ctx context.Context) (StoreSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (StoreSettings, error)
}

var (
	ErrInvalidStore       = errors.New("invalid_store")
	ErrInvalidThreshold   = errors.New("invalid_threshold")
	ErrInvalidTimePeriod  = errors.New("invalid_time_period")
	ErrInvalidSensitivity = errors.New("invalid_sensitivity")
	ErrInvalidActionType  = errors.New("invalid_action_type")
)
