package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/ecomprotect/sentinel/internal/user/domain"
	"github.com/ecomprotect/sentinel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

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
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.User{}, domain.ErrMissingFullName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	mobile := strings.TrimSpace(req.MobileNumber)
	if mobile == "" {
		return domain.User{}, domain.ErrMissingMobile
	}
	if len(req.Password) < minPasswordLength {
		return domain.User{}, domain.ErrWeakPassword
	}
	if !domain.ValidRole(req.Role) {
		return domain.User{}, domain.ErrInvalidRole
	}

	var storeID *snowflake.ID
	if !req.Role.Platform() {
		parsed, err := s.resolveStoreID(ctx, req.StoreID)
		if err != nil {
			return domain.User{}, err
		}
		storeID = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		FullName:     fullName,
		Email:        email,
		MobileNumber: mobile,
		PasswordHash: string(hash),
		Role:         req.Role,
		StoreID:      storeID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &user); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateEmail
			}
			return err
		}
		return s.audit.Record(ctx, tx, auditdomain.Entry{
			StoreID:    storeID,
			Action:     "user.create",
			EntityType: "user",
			EntityID:   user.ID.String(),
			NewValues: map[string]any{
				"email": user.Email,
				"role":  string(user.Role),
			},
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	userID, err := s.parseID(id)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.User{}, domain.ErrInvalidEmail
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *Service) ListByStore(ctx context.Context) ([]domain.User, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}

	items, err := s.repo.ListByStore(ctx, s.db, storeID)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}
	return users, nil
}

func (s *Service) RecordLogin(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(user *domain.User) {
		now := s.clock.Now()
		user.LastLoginAt = &now
	})
}

func (s *Service) VerifyEmail(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(user *domain.User) {
		user.EmailVerified = true
	})
}

func (s *Service) SetMFAEnabled(ctx context.Context, id string, enabled bool) error {
	return s.mutate(ctx, id, func(user *domain.User) {
		user.MFAEnabled = enabled
	})
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(user *domain.User) {
		user.IsActive = false
	})
}

func (s *Service) mutate(ctx context.Context, id string, apply func(*domain.User)) error {
	userID, err := s.parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		apply(user)
		user.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, user)
	})
}

func (s *Service) resolveStoreID(ctx context.Context, raw *string) (*snowflake.ID, error) {
	if raw != nil && strings.TrimSpace(*raw) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*raw))
		if err != nil || parsed == 0 {
			return nil, domain.ErrInvalidStore
		}
		return &parsed, nil
	}
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	return &storeID, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
