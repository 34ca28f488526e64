package domain

import (
	"context"
	"errors"

	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/pkg/db/pagination"
)

type CreateOrderRequest struct {
	ShopifyOrderID    string
	OrderNumber       string
	CustomerEmail     string
	CustomerFirstName string
	CustomerLastName  string
	CustomerAddress   *Address
	CustomerPhone     string
	CustomerIP        string
	OrderValue        float64
	Currency          string
	DeliveryMethod    string
}

type ListOrderRequest struct {
	pagination.Pagination
	Status        Status
	IsFlagged     *bool
	CustomerEmail string
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type Service interface {
	// Create inserts the order in pending status and screens it against
	// the customer's history.
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)

	// Flag moves a pending order to flagged, recording the score, level
	// and reason atomically with the flag.
	Flag(ctx context.Context, id string, details FlagDetails) (Order, error)

	// ApplyAction applies the store's response policy to a flagged order.
	ApplyAction(ctx context.Context, id string, action settingsdomain.ActionType, notes string) (Order, error)

	Fulfill(ctx context.Context, id string) (Order, error)
	Cancel(ctx context.Context, id string) (Order, error)
}

// FlagDetails carries the evaluation outcome persisted with the flag.
type FlagDetails struct {
	Score  int
	Level  riskdomain.Level
	Reason string
}

var (
	ErrInvalidStore     = errors.New("invalid_store")
	ErrInvalidID        = errors.New("invalid_id")
	ErrValidation       = errors.New("validation_failed")
	ErrStoreNotFound    = errors.New("store_not_found")
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrInvalidState     = errors.New("invalid_state")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
