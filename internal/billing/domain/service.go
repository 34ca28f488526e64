package domain

import (
	"context"
	"errors"
	"time"

	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
)

type CreateSubscriptionRequest struct {
	Package storedomain.Package
	Plan    storedomain.Plan
}

// ActivateSubscriptionRequest carries the billing collaborator's mandate
// details once the payment setup completes.
type ActivateSubscriptionRequest struct {
	ID                       string
	GoCardlessMandateID      string
	GoCardlessSubscriptionID string
	MonthlyPrice             float64
	NextBillingDate          time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (PackageSubscription, error)
	Activate(ctx context.Context, req ActivateSubscriptionRequest) (PackageSubscription, error)
	Suspend(ctx context.Context, id string) (PackageSubscription, error)
	Reactivate(ctx context.Context, id string) (PackageSubscription, error)
	Cancel(ctx context.Context, id string) (PackageSubscription, error)
	ListByStore(ctx context.Context) ([]PackageSubscription, error)
}

var (
	ErrInvalidStore         = errors.New("invalid_store")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidPackage       = errors.New("invalid_package")
	ErrInvalidPlan          = errors.New("invalid_plan")
	ErrMissingMandate       = errors.New("missing_mandate")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrInvalidState         = errors.New("invalid_state")
)
