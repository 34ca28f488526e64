package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/observability"
	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
	"github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/ecomprotect/sentinel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxRecomputeAttempts = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Settings settingsdomain.Service
	Metrics  *observability.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	settings settingsdomain.Service
	metrics  *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("riskhistory.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		settings: p.Settings,
		metrics:  p.Metrics,
	}
}

// Recompute recounts the customer's orders within the store's lookback
// window and rewrites the aggregate row under a row lock. A concurrent
// insert of the same row is retried; after the retry budget the caller
// gets ErrConflict.
func (s *Service) Recompute(ctx context.Context, customerEmail string) (domain.CustomerRiskHistory, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return domain.CustomerRiskHistory{}, domain.ErrInvalidStore
	}
	email := strings.ToLower(strings.TrimSpace(customerEmail))
	if email == "" {
		return domain.CustomerRiskHistory{}, domain.ErrInvalidCustomer
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.CustomerRiskHistory{}, err
	}
	since := s.clock.Now().AddDate(0, -settings.TimePeriodMonths, 0)

	var history domain.CustomerRiskHistory
	var lastErr error
	for attempt := 0; attempt < maxRecomputeAttempts; attempt++ {
		history, lastErr = s.recomputeOnce(ctx, storeID, email, settings, since)
		if lastErr == nil {
			return history, nil
		}
		if !db.IsDuplicateKeyErr(lastErr) {
			return domain.CustomerRiskHistory{}, lastErr
		}
		s.log.Warn("history recompute collided, retrying",
			zap.String("customer_email", email),
			zap.Int("attempt", attempt+1),
		)
	}

	s.metrics.HistoryConflicts.Inc()
	return domain.CustomerRiskHistory{}, domain.ErrConflict
}

func (s *Service) recomputeOnce(ctx context.Context, storeID snowflake.ID, email string, settings settingsdomain.StoreSettings, since time.Time) (domain.CustomerRiskHistory, error) {
	var result domain.CustomerRiskHistory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history, err := s.repo.FindForUpdate(ctx, tx, storeID, email)
		if err != nil {
			return err
		}

		counts, err := s.repo.CountOrders(ctx, tx, storeID, email, since)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if history == nil {
			history = &domain.CustomerRiskHistory{
				ID:            s.genID.Generate(),
				StoreID:       storeID,
				CustomerEmail: email,
				IsActive:      true,
				CreatedAt:     now,
			}
			s.apply(history, counts, settings, now)
			if err := s.repo.Insert(ctx, tx, history); err != nil {
				return err
			}
		} else {
			s.apply(history, counts, settings, now)
			if err := s.repo.Update(ctx, tx, history); err != nil {
				return err
			}
		}
		result = *history
		return nil
	})
	if err != nil {
		return domain.CustomerRiskHistory{}, err
	}
	return result, nil
}

func (s *Service) apply(history *domain.CustomerRiskHistory, counts domain.OrderCounts, settings settingsdomain.StoreSettings, now time.Time) {
	history.TotalOrders = counts.Total
	history.FlaggedOrders = counts.Flagged
	history.LostOrders = counts.Lost
	history.LastFlaggedAt = counts.LastFlaggedAt
	history.UpdatedAt = now

	if counts.Total > 0 {
		rate := roundRate(float64(counts.Lost) / float64(counts.Total))
		history.LossRate = &rate
	} else {
		history.LossRate = nil
	}

	eval := riskdomain.Evaluate(riskdomain.EvaluationInput{
		TotalOrders:         counts.Total,
		LostOrders:          counts.Lost,
		LostParcelThreshold: settings.LostParcelThreshold,
		LossRateThreshold:   settings.LossRateThreshold,
		Sensitivity:         settings.MatchSensitivity,
	})
	if eval.HasLevel {
		level := eval.Level
		history.RiskLevel = &level
	} else {
		history.RiskLevel = nil
	}
}

func (s *Service) Get(ctx context.Context, customerEmail string) (*domain.CustomerRiskHistory, error) {
	storeID, ok := storectx.StoreIDFromContext(ctx)
	if !ok || storeID == 0 {
		return nil, domain.ErrInvalidStore
	}
	email := strings.ToLower(strings.TrimSpace(customerEmail))
	if email == "" {
		return nil, domain.ErrInvalidCustomer
	}
	return s.repo.Find(ctx, s.db, storeID, email)
}

// roundRate keeps the stored rate at the column's two decimal places.
func roundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}
