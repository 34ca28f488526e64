package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateSessionRequest struct {
	UserID    snowflake.ID
	Token     string
	TTL       time.Duration
	IPAddress string
	UserAgent string
}

type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error)

	// ResolveSession returns the session for a token, dropping it when
	// expired.
	ResolveSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, id string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)

	IssueVerification(ctx context.Context, identifier, value string, ttl time.Duration) (Verification, error)
	ConsumeVerification(ctx context.Context, identifier, value string) error

	IssueMFAToken(ctx context.Context, userID snowflake.ID, tokenType MFATokenType, token string, ttl time.Duration) (MFAToken, error)
	ConsumeMFAToken(ctx context.Context, userID snowflake.ID, token string) error
}

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrMissingToken        = errors.New("missing_token")
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrSessionExpired      = errors.New("session_expired")
	ErrVerificationInvalid = errors.New("verification_invalid")
	ErrMFATokenInvalid     = errors.New("mfa_token_invalid")
)
