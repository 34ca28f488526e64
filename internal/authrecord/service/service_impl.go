package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/authrecord/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSessionTTL = 24 * time.Hour

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
		log:   p.Log.Named("authrecord.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (domain.Session, error) {
	if req.UserID == 0 {
		return domain.Session{}, domain.ErrInvalidUser
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return domain.Session{}, domain.ErrMissingToken
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    req.UserID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		session.IPAddress = &ip
	} else if ip := auditctx.IPAddressFromContext(ctx); ip != "" {
		session.IPAddress = &ip
	}
	if ua := strings.TrimSpace(req.UserAgent); ua != "" {
		session.UserAgent = &ua
	} else if ua := auditctx.UserAgentFromContext(ctx); ua != "" {
		session.UserAgent = &ua
	}

	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *Service) ResolveSession(ctx context.Context, token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, domain.ErrMissingToken
	}

	session, err := s.repo.FindSessionByToken(ctx, s.db, token)
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if !session.ExpiresAt.After(s.clock.Now()) {
		if err := s.repo.DeleteSession(ctx, s.db, session.ID); err != nil {
			s.log.Warn("expired session cleanup failed", zap.Error(err))
		}
		return domain.Session{}, domain.ErrSessionExpired
	}
	return *session, nil
}

func (s *Service) RevokeSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrSessionNotFound
	}
	return s.repo.DeleteSession(ctx, s.db, id)
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.db, s.clock.Now())
}

func (s *Service) IssueVerification(ctx context.Context, identifier, value string, ttl time.Duration) (domain.Verification, error) {
	identifier = strings.TrimSpace(identifier)
	value = strings.TrimSpace(value)
	if identifier == "" || value == "" {
		return domain.Verification{}, domain.ErrVerificationInvalid
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := s.clock.Now()
	verification := domain.Verification{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Value:      value,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertVerification(ctx, s.db, &verification); err != nil {
		return domain.Verification{}, err
	}
	return verification, nil
}

func (s *Service) ConsumeVerification(ctx context.Context, identifier, value string) error {
	verification, err := s.repo.FindVerification(ctx, s.db, strings.TrimSpace(identifier))
	if err != nil {
		return err
	}
	if verification == nil || verification.Value != strings.TrimSpace(value) {
		return domain.ErrVerificationInvalid
	}
	if !verification.ExpiresAt.After(s.clock.Now()) {
		return domain.ErrVerificationInvalid
	}
	return s.repo.DeleteVerification(ctx, s.db, verification.ID)
}

func (s *Service) IssueMFAToken(ctx context.Context, userID snowflake.ID, tokenType domain.MFATokenType, token string, ttl time.Duration) (domain.MFAToken, error) {
	if userID == 0 {
		return domain.MFAToken{}, domain.ErrInvalidUser
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.MFAToken{}, domain.ErrMissingToken
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	now := s.clock.Now()
	mfa := domain.MFAToken{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Token:     token,
		Type:      tokenType,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertMFAToken(ctx, s.db, &mfa); err != nil {
		return domain.MFAToken{}, err
	}
	return mfa, nil
}

func (s *Service) ConsumeMFAToken(ctx context.Context, userID snowflake.ID, token string) error {
	mfa, err := s.repo.FindActiveMFAToken(ctx, s.db, userID, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if mfa == nil {
		return domain.ErrMFATokenInvalid
	}
	now := s.clock.Now()
	if !mfa.ExpiresAt.After(now) {
		return domain.ErrMFATokenInvalid
	}
	return s.repo.MarkMFATokenUsed(ctx, s.db, mfa.ID, now)
}
