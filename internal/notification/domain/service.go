package domain

import (
	"context"
	"errors"
)

// EnqueueRequest describes one outbound email to record.
type EnqueueRequest struct {
	RecipientEmail string
	RecipientType  RecipientType
	Subject        string
	Content        string
}

type Service interface {
	Enqueue(ctx context.Context, req EnqueueRequest) (EmailNotification, error)

	// ReportDelivery is the callback from the delivery collaborator.
	ReportDelivery(ctx context.Context, id string, status DeliveryStatus, errorMessage string) error

	ListByStore(ctx context.Context, limit int) ([]EmailNotification, error)
}

var (
	ErrInvalidStore         = errors.New("invalid_store")
	ErrInvalidID            = errors.New("invalid_id")
	ErrMissingRecipient     = errors.New("missing_recipient")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrNotificationNotFound = errors.New("notification_not_found")
)
