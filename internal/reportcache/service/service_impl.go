package service

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/reportcache/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultTTL = 15 * time.Minute

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
		log:   p.Log.Named("reportcache.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) GetOrCompute(ctx context.Context, reportType string, parameters map[string]any, ttl time.Duration, compute domain.ComputeFunc) ([]byte, error) {
	reportType = strings.TrimSpace(reportType)
	if reportType == "" {
		return nil, domain.ErrMissingReportType
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	var storeID *snowflake.ID
	if id, ok := storectx.StoreIDFromContext(ctx); ok && id != 0 {
		storeID = &id
	}

	cached, err := s.repo.FindLatest(ctx, s.db, reportType, storeID)
	if err != nil {
		// Cache read failures fall through to recomputation.
		s.log.Warn("report cache lookup failed", zap.String("report_type", reportType), zap.Error(err))
		cached = nil
	}

	now := s.clock.Now()
	if cached != nil && cached.ExpiresAt.After(now) && parametersMatch(cached.Parameters, parameters) {
		return []byte(cached.Result), nil
	}

	result, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	entry := domain.ReportCache{
		ID:         s.genID.Generate(),
		ReportType: reportType,
		StoreID:    storeID,
		Parameters: datatypes.JSONMap(parameters),
		Result:     datatypes.JSON(payload),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		// A failed cache write never fails the report itself.
		s.log.Warn("report cache write failed", zap.String("report_type", reportType), zap.Error(err))
	}
	return payload, nil
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.db, s.clock.Now())
}

// parametersMatch compares through a JSON round trip so numeric types
// coming back from the database line up with the caller's values.
func parametersMatch(stored datatypes.JSONMap, requested map[string]any) bool {
	if len(stored) == 0 && len(requested) == 0 {
		return true
	}
	storedJSON, err := json.Marshal(map[string]any(stored))
	if err != nil {
		return false
	}
	requestedJSON, err := json.Marshal(requested)
	if err != nil {
		return false
	}
	var a, b map[string]any
	if err := json.Unmarshal(storedJSON, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(requestedJSON, &b); err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}
