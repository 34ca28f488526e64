package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/observability"
	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	"github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	"github.com/ecomprotect/sentinel/internal/riskhistory/repository"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testMetrics = observability.New()

type fixedSettings struct {
	settings settingsdomain.StoreSettings
}

func (f fixedSettings) Get(context.Context) (settingsdomain.StoreSettings, error) {
	return f.settings, nil
}

func (f fixedSettings) Update(context.Context, settingsdomain.UpdateSettingsRequest) (settingsdomain.StoreSettings, error) {
	return f.settings, nil
}

type historyFixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     domain.Service
	storeID snowflake.ID
}

func newHistoryFixture(t *testing.T, settings settingsdomain.StoreSettings) *historyFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orderdomain.Order{}, &domain.CustomerRiskHistory{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(),
		Settings: fixedSettings{settings: settings},
		Metrics:  testMetrics,
	})

	return &historyFixture{db: db, node: node, clock: clk, svc: svc, storeID: node.Generate()}
}

func (f *historyFixture) ctx() context.Context {
	return storectx.WithStoreID(context.Background(), int64(f.storeID))
}

func (f *historyFixture) seedOrder(t *testing.T, email string, status orderdomain.Status, flagged bool, createdAt time.Time) {
	t.Helper()
	order := orderdomain.Order{
		ID:            f.node.Generate(),
		StoreID:       f.storeID,
		OrderNumber:   "#1001",
		CustomerEmail: email,
		OrderValue:    25,
		Currency:      "GBP",
		Status:        status,
		IsFlagged:     flagged,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	if flagged {
		flaggedAt := createdAt
		order.FlaggedAt = &flaggedAt
	}
	require.NoError(t, f.db.Create(&order).Error)
}

func defaultThresholds() settingsdomain.StoreSettings {
	rate := 0.20
	return settingsdomain.StoreSettings{
		LostParcelThreshold: 3,
		LossRateThreshold:   &rate,
		TimePeriodMonths:    6,
		MatchSensitivity:    settingsdomain.SensitivityMedium,
	}
}

func TestRecomputeCountsAndScores(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())
	email := "risky@example.com"
	recent := f.clock.Now().AddDate(0, -1, 0)

	for i := 0; i < 7; i++ {
		f.seedOrder(t, email, orderdomain.StatusFulfilled, false, recent)
	}
	f.seedOrder(t, email, orderdomain.StatusFlagged, true, recent)
	f.seedOrder(t, email, orderdomain.StatusHeldForReview, true, recent)
	f.seedOrder(t, email, orderdomain.StatusCancelled, false, recent)

	history, err := f.svc.Recompute(f.ctx(), email)
	require.NoError(t, err)

	assert.Equal(t, 10, history.TotalOrders)
	assert.Equal(t, 2, history.FlaggedOrders)
	assert.Equal(t, 3, history.LostOrders)
	require.NotNil(t, history.LossRate)
	assert.InDelta(t, 0.30, *history.LossRate, 0.001)
	require.NotNil(t, history.RiskLevel)
	assert.Equal(t, "high", string(*history.RiskLevel))
	assert.NotNil(t, history.LastFlaggedAt)
	assert.True(t, history.IsActive)
}

func TestRecomputeIgnoresOrdersOutsideWindow(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())
	email := "aged@example.com"

	old := f.clock.Now().AddDate(0, -12, 0)
	f.seedOrder(t, email, orderdomain.StatusCancelled, false, old)
	f.seedOrder(t, email, orderdomain.StatusFlagged, true, old)
	f.seedOrder(t, email, orderdomain.StatusFulfilled, false, f.clock.Now().AddDate(0, -1, 0))

	history, err := f.svc.Recompute(f.ctx(), email)
	require.NoError(t, err)

	assert.Equal(t, 1, history.TotalOrders)
	assert.Equal(t, 0, history.FlaggedOrders)
	assert.Equal(t, 0, history.LostOrders)
	require.NotNil(t, history.LossRate)
	assert.Zero(t, *history.LossRate)
	assert.Nil(t, history.RiskLevel)
}

func TestRecomputeNoOrders(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())

	history, err := f.svc.Recompute(f.ctx(), "fresh@example.com")
	require.NoError(t, err)

	assert.Zero(t, history.TotalOrders)
	assert.Nil(t, history.LossRate)
	assert.Nil(t, history.RiskLevel)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())
	email := "steady@example.com"
	f.seedOrder(t, email, orderdomain.StatusCancelled, false, f.clock.Now().AddDate(0, -1, 0))

	first, err := f.svc.Recompute(f.ctx(), email)
	require.NoError(t, err)
	second, err := f.svc.Recompute(f.ctx(), email)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalOrders, second.TotalOrders)
	assert.Equal(t, first.LostOrders, second.LostOrders)

	var count int64
	require.NoError(t, f.db.Model(&domain.CustomerRiskHistory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecomputeNormalizesEmail(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())
	f.seedOrder(t, "mixed@example.com", orderdomain.StatusFulfilled, false, f.clock.Now().AddDate(0, -1, 0))

	history, err := f.svc.Recompute(f.ctx(), "  Mixed@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "mixed@example.com", history.CustomerEmail)
	assert.Equal(t, 1, history.TotalOrders)
}

func TestRecomputeValidation(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())

	_, err := f.svc.Recompute(context.Background(), "a@example.com")
	assert.ErrorIs(t, err, domain.ErrInvalidStore)

	_, err = f.svc.Recompute(f.ctx(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

type collidingRepo struct {
	domain.Repository
	attempts int
}

func (r *collidingRepo) FindForUpdate(context.Context, *gorm.DB, snowflake.ID, string) (*domain.CustomerRiskHistory, error) {
	return nil, nil
}

func (r *collidingRepo) Insert(context.Context, *gorm.DB, *domain.CustomerRiskHistory) error {
	r.attempts++
	return gorm.ErrDuplicatedKey
}

func TestRecomputeConflictAfterRetries(t *testing.T) {
	f := newHistoryFixture(t, defaultThresholds())

	repo := &collidingRepo{Repository: repository.Provide()}
	svc := New(Params{
		DB:       f.db,
		Log:      zap.NewNop(),
		GenID:    f.node,
		Clock:    f.clock,
		Repo:     repo,
		Settings: fixedSettings{settings: defaultThresholds()},
		Metrics:  testMetrics,
	})

	_, err := svc.Recompute(f.ctx(), "contended@example.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, repo.attempts)
}
