package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/ecomprotect/sentinel/internal/audit/domain"
	auditrepository "github.com/ecomprotect/sentinel/internal/audit/repository"
	auditservice "github.com/ecomprotect/sentinel/internal/audit/service"
	"github.com/ecomprotect/sentinel/internal/clock"
	exclusiondomain "github.com/ecomprotect/sentinel/internal/exclusion/domain"
	exclusionrepository "github.com/ecomprotect/sentinel/internal/exclusion/repository"
	exclusionservice "github.com/ecomprotect/sentinel/internal/exclusion/service"
	notificationdomain "github.com/ecomprotect/sentinel/internal/notification/domain"
	notificationrepository "github.com/ecomprotect/sentinel/internal/notification/repository"
	notificationservice "github.com/ecomprotect/sentinel/internal/notification/service"
	"github.com/ecomprotect/sentinel/internal/observability"
	orderdomain "github.com/ecomprotect/sentinel/internal/order/domain"
	orderrepository "github.com/ecomprotect/sentinel/internal/order/repository"
	orderservice "github.com/ecomprotect/sentinel/internal/order/service"
	riskdomain "github.com/ecomprotect/sentinel/internal/risk/domain"
	riskhistorydomain "github.com/ecomprotect/sentinel/internal/riskhistory/domain"
	riskhistoryrepository "github.com/ecomprotect/sentinel/internal/riskhistory/repository"
	riskhistoryservice "github.com/ecomprotect/sentinel/internal/riskhistory/service"
	settingsdomain "github.com/ecomprotect/sentinel/internal/settings/domain"
	settingsrepository "github.com/ecomprotect/sentinel/internal/settings/repository"
	settingsservice "github.com/ecomprotect/sentinel/internal/settings/service"
	storedomain "github.com/ecomprotect/sentinel/internal/store/domain"
	storerepository "github.com/ecomprotect/sentinel/internal/store/repository"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testMetrics = observability.New()

type engineFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	clock      *clock.FakeClock
	orders     orderdomain.Service
	settings   settingsdomain.Service
	exclusions exclusiondomain.Service
	history    riskhistorydomain.Service
	engine     Engine
	storeID    snowflake.ID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&storedomain.Store{},
		&orderdomain.Order{},
		&settingsdomain.StoreSettings{},
		&exclusiondomain.CustomerExclusion{},
		&riskhistorydomain.CustomerRiskHistory{},
		&notificationdomain.EmailNotification{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	audit := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepository.Provide(),
	})

	storeID := node.Generate()
	store := storedomain.Store{
		ID:          storeID,
		CompanyName: "Acme Retail Ltd",
		StoreURL:    "https://acme.example.com",
		Plan:        storedomain.PlanStarter,
		Status:      storedomain.StatusActive,
		IsActive:    true,
		CreatedAt:   clk.Now(),
		UpdatedAt:   clk.Now(),
	}
	require.NoError(t, db.Create(&store).Error)

	orders := orderservice.New(orderservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:      orderrepository.Provide(),
		StoreRepo: storerepository.Provide(),
		Audit:     audit,
		Metrics:   testMetrics,
	})
	settings := settingsservice.New(settingsservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:  settingsrepository.Provide(),
		Audit: audit,
	})
	exclusions := exclusionservice.New(exclusionservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:  exclusionrepository.Provide(),
		Audit: audit,
	})
	history := riskhistoryservice.New(riskhistoryservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:     riskhistoryrepository.Provide(),
		Settings: settings,
		Metrics:  testMetrics,
	})
	notifier := notificationservice.New(notificationservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: notificationrepository.Provide(),
	})

	eng := New(Params{
		Log: log, Clock: clk,
		Orders:     orders,
		Settings:   settings,
		Exclusions: exclusions,
		History:    history,
		Notifier:   notifier,
		Metrics:    testMetrics,
	})

	return &engineFixture{
		db: db, node: node, clock: clk,
		orders: orders, settings: settings, exclusions: exclusions,
		history: history, engine: eng, storeID: storeID,
	}
}

func (f *engineFixture) ctx() context.Context {
	return storectx.WithStoreID(context.Background(), int64(f.storeID))
}

// configure sets the store's thresholds to 3 lost parcels / 20% loss rate
// over six months at medium sensitivity.
func (f *engineFixture) configure(t *testing.T, recipients []string) {
	t.Helper()
	rate := 0.20
	_, err := f.settings.Update(f.ctx(), settingsdomain.UpdateSettingsRequest{
		LossRateThreshold:      &rate,
		NotificationRecipients: recipients,
	})
	require.NoError(t, err)
}

// seedHistory writes prior orders for the customer and recomputes the
// aggregate: total orders, of which lost are cancelled.
func (f *engineFixture) seedHistory(t *testing.T, email string, total, lost int) {
	t.Helper()
	createdAt := f.clock.Now().AddDate(0, -1, 0)
	for i := 0; i < total; i++ {
		status := orderdomain.StatusFulfilled
		if i < lost {
			status = orderdomain.StatusCancelled
		}
		order := orderdomain.Order{
			ID:            f.node.Generate(),
			StoreID:       f.storeID,
			OrderNumber:   "#900",
			CustomerEmail: email,
			OrderValue:    25,
			Currency:      "GBP",
			Status:        status,
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		}
		require.NoError(t, f.db.Create(&order).Error)
	}
	_, err := f.history.Recompute(f.ctx(), email)
	require.NoError(t, err)
}

func (f *engineFixture) placeOrder(t *testing.T, email string) orderdomain.Order {
	t.Helper()
	order, err := f.orders.Create(f.ctx(), orderdomain.CreateOrderRequest{
		OrderNumber:   "#1001",
		CustomerEmail: email,
		OrderValue:    120,
	})
	require.NoError(t, err)
	return order
}

func TestScreenFlagsRiskyCustomer(t *testing.T) {
	f := newEngineFixture(t)
	f.configure(t, []string{"ops@acme.example.com"})

	email := "risky@example.com"
	f.seedHistory(t, email, 10, 3)
	order := f.placeOrder(t, email)

	result, err := f.engine.Screen(f.ctx(), order.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 80, result.Evaluation.Score)
	assert.Equal(t, riskdomain.LevelHigh, result.Evaluation.Level)
	assert.True(t, result.Flagged)

	// The default response action holds the order for review immediately.
	require.NotNil(t, result.ActionApplied)
	assert.Equal(t, settingsdomain.ActionFulfillmentHold, *result.ActionApplied)
	assert.Equal(t, orderdomain.StatusHeldForReview, result.Order.Status)
	assert.True(t, result.Order.IsFlagged)
	require.NotNil(t, result.Order.RiskLevel)
	assert.Equal(t, riskdomain.LevelHigh, *result.Order.RiskLevel)

	// The flagged order rolls into the customer's aggregate.
	history, err := f.history.Get(f.ctx(), email)
	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Equal(t, 11, history.TotalOrders)
	assert.Equal(t, 4, history.LostOrders)
	assert.Equal(t, 1, history.FlaggedOrders)

	var notifications []notificationdomain.EmailNotification
	require.NoError(t, f.db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "ops@acme.example.com", notifications[0].RecipientEmail)
	assert.Contains(t, notifications[0].Content, "risk level high")
}

func TestScreenLeavesCleanCustomerPending(t *testing.T) {
	f := newEngineFixture(t)
	f.configure(t, []string{"ops@acme.example.com"})

	email := "calm@example.com"
	f.seedHistory(t, email, 10, 0)
	order := f.placeOrder(t, email)

	result, err := f.engine.Screen(f.ctx(), order.ID.String())
	require.NoError(t, err)

	assert.False(t, result.Flagged)
	assert.Nil(t, result.ActionApplied)
	assert.Zero(t, result.Evaluation.Score)

	current, err := f.orders.GetByID(f.ctx(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, current.Status)
	assert.Nil(t, current.RiskLevel)

	var notifications []notificationdomain.EmailNotification
	require.NoError(t, f.db.Find(&notifications).Error)
	assert.Empty(t, notifications)
}

func TestScreenExclusionSuppressesFlag(t *testing.T) {
	f := newEngineFixture(t)
	f.configure(t, []string{"ops@acme.example.com"})

	email := "vip@example.com"
	f.seedHistory(t, email, 10, 5)
	_, err := f.exclusions.Create(f.ctx(), exclusiondomain.CreateExclusionRequest{
		CustomerEmail: email,
		Reason:        "known good wholesale buyer",
	})
	require.NoError(t, err)

	order := f.placeOrder(t, email)
	result, err := f.engine.Screen(f.ctx(), order.ID.String())
	require.NoError(t, err)

	assert.True(t, result.Evaluation.Excluded)
	assert.False(t, result.Flagged)
	assert.Zero(t, result.Evaluation.Score)

	current, err := f.orders.GetByID(f.ctx(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, current.Status)
}

func TestScreenDeferredAction(t *testing.T) {
	f := newEngineFixture(t)
	f.configure(t, nil)
	delay := 24
	_, err := f.settings.Update(f.ctx(), settingsdomain.UpdateSettingsRequest{ActionDelayHours: &delay})
	require.NoError(t, err)

	email := "risky@example.com"
	f.seedHistory(t, email, 10, 3)
	order := f.placeOrder(t, email)

	result, err := f.engine.Screen(f.ctx(), order.ID.String())
	require.NoError(t, err)

	assert.True(t, result.Flagged)
	assert.Nil(t, result.ActionApplied)
	assert.Equal(t, orderdomain.StatusFlagged, result.Order.Status)
	assert.Nil(t, result.Order.ActionTaken)
}

func TestScreenRequiresPendingOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.configure(t, nil)

	order := f.placeOrder(t, "calm@example.com")
	_, err := f.orders.Fulfill(f.ctx(), order.ID.String())
	require.NoError(t, err)

	_, err = f.engine.Screen(f.ctx(), order.ID.String())
	assert.ErrorIs(t, err, riskdomain.ErrNotPending)
}
