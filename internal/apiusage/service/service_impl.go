package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/apiusage/domain"
	"github.com/ecomprotect/sentinel/internal/auditctx"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
		log:   p.Log.Named("apiusage.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordUsageRequest) error {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.ErrInvalidStore
	}
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return domain.ErrMissingEndpoint
	}

	now := s.clock.Now()
	usage := domain.ApiUsage{
		ID:           s.genID.Generate(),
		StoreID:      storeID,
		Endpoint:     endpoint,
		Method:       strings.ToUpper(strings.TrimSpace(req.Method)),
		ResponseTime: req.ResponseTime,
		StatusCode:   req.StatusCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ip := auditctx.IPAddressFromContext(ctx); ip != "" {
		usage.IPAddress = &ip
	}
	if ua := auditctx.UserAgentFromContext(ctx); ua != "" {
		usage.UserAgent = &ua
	}

	return s.repo.Insert(ctx, s.db, &usage)
}

func (s *Service) CountLast30Days(ctx context.Context) (int64, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return 0, domain.ErrInvalidStore
	}
	since := s.clock.Now().AddDate(0, 0, -30)
	return s.repo.CountSince(ctx, s.db, storeID, since)
}
