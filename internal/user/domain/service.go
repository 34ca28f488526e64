package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	FullName     string
	Email        string
	MobileNumber string
	Password     string
	Role         Role
	StoreID      *string
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByStore(ctx context.Context) ([]User, error)

	// RecordLogin stamps LastLoginAt; invoked by the auth collaborator.
	RecordLogin(ctx context.Context, id string) error
	VerifyEmail(ctx context.Context, id string) error
	SetMFAEnabled(ctx context.Context, id string, enabled bool) error
	Deactivate(ctx context.Context, id string) error
}

var (
	ErrMissingFullName = errors.New("missing_full_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrMissingMobile   = errors.New("missing_mobile_number")
	ErrWeakPassword    = errors.New("weak_password")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidStore    = errors.New("invalid_store")
	ErrInvalidID       = errors.New("invalid_id")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrDuplicateEmail  = errors.New("duplicate_email")
)
