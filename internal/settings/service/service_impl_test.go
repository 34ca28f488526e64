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
	"github.com/ecomprotect/sentinel/internal/settings/domain"
	"github.com/ecomprotect/sentinel/internal/settings/repository"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sensitivityPtr(v domain.MatchSensitivity) *domain.MatchSensitivity { return &v }
func actionPtr(v domain.ActionType) *domain.ActionType                  { return &v }

type settingsFixture struct {
	db      *gorm.DB
	svc     domain.Service
	storeID snowflake.ID
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.StoreSettings{}, &auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})

	svc := New(Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
		Audit: audit,
	})

	return &settingsFixture{db: db, svc: svc, storeID: node.Generate()}
}

func (f *settingsFixture) ctx() context.Context {
	return storectx.WithStoreID(context.Background(), int64(f.storeID))
}

func TestGetCreatesDefaults(t *testing.T) {
	f := newSettingsFixture(t)

	settings, err := f.svc.Get(f.ctx())
	require.NoError(t, err)

	assert.Equal(t, f.storeID, settings.StoreID)
	assert.Equal(t, 3, settings.LostParcelThreshold)
	assert.Nil(t, settings.LossRateThreshold)
	assert.Equal(t, 6, settings.TimePeriodMonths)
	assert.Equal(t, domain.SensitivityMedium, settings.MatchSensitivity)
	assert.Equal(t, domain.ActionFulfillmentHold, settings.ActionType)
	assert.True(t, settings.EmailNotificationsEnabled)

	// A second read returns the persisted row rather than a new one.
	again, err := f.svc.Get(f.ctx())
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.StoreSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetRequiresStore(t *testing.T) {
	f := newSettingsFixture(t)
	_, err := f.svc.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidStore)
}

func TestUpdateSettings(t *testing.T) {
	f := newSettingsFixture(t)

	updated, err := f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{
		LostParcelThreshold: intPtr(5),
		LossRateThreshold:   floatPtr(0.25),
		TimePeriodMonths:    intPtr(12),
		MatchSensitivity:    sensitivityPtr(domain.SensitivityHigh),
		ActionType:          actionPtr(domain.ActionAutoCancel),
		ActionDelayHours:    intPtr(24),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.LostParcelThreshold)
	require.NotNil(t, updated.LossRateThreshold)
	assert.InDelta(t, 0.25, *updated.LossRateThreshold, 0.001)
	assert.Equal(t, 12, updated.TimePeriodMonths)
	assert.Equal(t, domain.SensitivityHigh, updated.MatchSensitivity)
	assert.Equal(t, domain.ActionAutoCancel, updated.ActionType)
	require.NotNil(t, updated.ActionDelayHours)
	assert.Equal(t, 24, *updated.ActionDelayHours)

	var audits []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "settings.update").Find(&audits).Error)
	assert.Len(t, audits, 1)

	// ClearLossRate drops the threshold back to disabled.
	cleared, err := f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{ClearLossRate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.LossRateThreshold)
}

func TestUpdateSettingsValidation(t *testing.T) {
	f := newSettingsFixture(t)

	_, err := f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{LostParcelThreshold: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

	_, err = f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{LossRateThreshold: floatPtr(1.5)})
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

	_, err = f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{TimePeriodMonths: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidTimePeriod)

	bogus := domain.MatchSensitivity("paranoid")
	_, err = f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{MatchSensitivity: &bogus})
	assert.ErrorIs(t, err, domain.ErrInvalidSensitivity)

	action := domain.ActionType("escalate")
	_, err = f.svc.Update(f.ctx(), domain.UpdateSettingsRequest{ActionType: &action})
	assert.ErrorIs(t, err, domain.ErrInvalidActionType)
}
