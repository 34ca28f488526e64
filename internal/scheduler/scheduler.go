package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecomprotect/sentinel/internal/auditctx"
	authrecorddomain "github.com/ecomprotect/sentinel/internal/authrecord/domain"
	"github.com/ecomprotect/sentinel/internal/clock"
	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	reportcachedomain "github.com/ecomprotect/sentinel/internal/reportcache/domain"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	OrderRepo   orderdomain.Repository
	OrderSvc    orderdomain.Service
	SettingsSvc settingsdomain.Service
	AuthRecords authrecorddomain.Service
	ReportCache reportcachedomain.Service
	Config      Config `optional:"true"`
}

// Scheduler runs the periodic maintenance jobs: deferred order actions,
// expired session cleanup and stale report cache cleanup.
type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	orderRepo   orderdomain.Repository
	orderSvc    orderdomain.Service
	settingsSvc settingsdomain.Service
	authRecords authrecorddomain.Service
	reportCache reportcachedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.OrderRepo == nil || p.OrderSvc == nil || p.SettingsSvc == nil || p.AuthRecords == nil || p.ReportCache == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		orderRepo:   p.OrderRepo,
		orderSvc:    p.OrderSvc,
		settingsSvc: p.SettingsSvc,
		authRecords: p.AuthRecords,
		reportCache: p.ReportCache,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = auditctx.WithActor(ctx, "scheduler")
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out", zap.String("job", name), zap.Error(err))
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "apply_due_actions", s.ApplyDueActionsJob))
	err = errors.Join(err, s.runJob(parent, "purge_sessions", s.PurgeSessionsJob))
	err = errors.Join(err, s.runJob(parent, "purge_report_cache", s.PurgeReportCacheJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Error("scheduler run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ApplyDueActionsJob applies the configured flagged-order action to
// orders whose action delay has elapsed. Stores with no delay configured
// have their action applied at screening time, so only delayed stores
// show up here.
func (s *Scheduler) ApplyDueActionsJob(ctx context.Context) error {
	orders, err := s.orderRepo.ListAwaitingAction(ctx, s.db, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	var errs error
	for _, order := range orders {
		storeCtx := storectx.WithStoreID(ctx, int64(order.StoreID))
		settings, err := s.settingsSvc.Get(storeCtx)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("settings for store %s: %w", order.StoreID, err))
			continue
		}
		if settings.ActionDelayHours == nil || *settings.ActionDelayHours <= 0 {
			continue
		}
		if order.FlaggedAt == nil {
			continue
		}
		due := order.FlaggedAt.Add(time.Duration(*settings.ActionDelayHours) * time.Hour)
		if now.Before(due) {
			continue
		}

		if _, err := s.orderSvc.ApplyAction(storeCtx, order.ID.String(), settings.ActionType, "automatic action after configured delay"); err != nil {
			// Racing a manual review is fine, everything else is not.
			if errors.Is(err, orderdomain.ErrInvalidState) || errors.Is(err, orderdomain.ErrOrderNotFound) {
				continue
			}
			errs = errors.Join(errs, fmt.Errorf("apply action to order %s: %w", order.ID, err))
			continue
		}
		s.log.Info("applied deferred action",
			zap.String("order_id", order.ID.String()),
			zap.String("store_id", order.StoreID.String()),
			zap.String("action", string(settings.ActionType)),
		)
	}
	return errs
}

func (s *Scheduler) PurgeSessionsJob(ctx context.Context) error {
	purged, err := s.authRecords.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.log.Info("purged expired sessions", zap.Int64("count", purged))
	}
	return nil
}

func (s *Scheduler) PurgeReportCacheJob(ctx context.Context) error {
	purged, err := s.reportCache.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.log.Info("purged stale report cache entries", zap.Int64("count", purged))
	}
	return nil
}
