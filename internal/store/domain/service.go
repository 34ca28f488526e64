package domain

import (
	"context"
	"errors"

	"github.com/ecomprotect/sentinel/pkg/db/pagination"
)

type CreateStoreRequest struct {
	CompanyName               string
	CompanyRegistrationNumber string
	StoreURL                  string
	AverageOrdersPerMonth     int
	Plan                      Plan
	Package                   *Package
}

type UpdateIntegrationRequest struct {
	ID                string
	ShopifyAPIKey     *string
	ShopifyAPISecret  *string
	ShopifyWebhookURL *string
}

type ListStoreRequest struct {
	pagination.Pagination
	Status   string
	Plan     string
	IsActive *bool
}

type ListStoreResponse struct {
	pagination.PageInfo
	Stores []Store `json:"stores"`
}

type Service interface {
	// Create registers a new tenant in pending_approval.
	Create(ctx context.Context, req CreateStoreRequest) (Store, error)
	GetByID(ctx context.Context, id string) (Store, error)
	List(ctx context.Context, req ListStoreRequest) (ListStoreResponse, error)

	// Approve moves pending_approval to active and records the approver.
	Approve(ctx context.Context, id string, approverID string) (Store, error)
	Suspend(ctx context.Context, id string) (Store, error)
	Reactivate(ctx context.Context, id string) (Store, error)
	// Disable is terminal; the store is retained as a soft state.
	Disable(ctx context.Context, id string) (Store, error)

	UpdateIntegration(ctx context.Context, req UpdateIntegrationRequest) (Store, error)
}

var (
	ErrMissingCompanyName    = errors.New("missing_company_name")
	ErrMissingRegistrationNo = errors.New("missing_registration_number")
	ErrMissingStoreURL       = errors.New("missing_store_url")
	ErrInvalidOrderVolume    = errors.New("invalid_order_volume")
	ErrInvalidPlan           = errors.New("invalid_plan")
	ErrInvalidPackage        = errors.New("invalid_package")
	ErrInvalidID             = errors.New("invalid_id")
	ErrStoreNotFound         = errors.New("store_not_found")
	ErrInvalidTransition     = errors.New("invalid_status_transition")
	ErrMissingApprover       = errors.New("missing_approver")
)
