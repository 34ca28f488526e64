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
	"github.com/ecomprotect/sentinel/internal/exclusion/domain"
	"github.com/ecomprotect/sentinel/internal/exclusion/repository"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type exclusionFixture struct {
	db      *gorm.DB
	svc     domain.Service
	storeID snowflake.ID
}

func newExclusionFixture(t *testing.T) *exclusionFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CustomerExclusion{}, &auditdomain.AuditLog{}))

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

	return &exclusionFixture{db: db, svc: svc, storeID: node.Generate()}
}

func (f *exclusionFixture) ctx() context.Context {
	return storectx.WithStoreID(context.Background(), int64(f.storeID))
}

func TestCreateExclusion(t *testing.T) {
	f := newExclusionFixture(t)

	exclusion, err := f.svc.Create(f.ctx(), domain.CreateExclusionRequest{
		CustomerEmail: "vip@example.com",
		Reason:        "long-standing wholesale account",
	})
	require.NoError(t, err)
	assert.True(t, exclusion.IsActive)
	require.NotNil(t, exclusion.CustomerEmail)
	assert.Equal(t, "vip@example.com", *exclusion.CustomerEmail)

	var audits []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "exclusion.create").Find(&audits).Error)
	assert.Len(t, audits, 1)
}

func TestCreateExclusionRequiresIdentity(t *testing.T) {
	f := newExclusionFixture(t)

	_, err := f.svc.Create(f.ctx(), domain.CreateExclusionRequest{Reason: "no identity at all"})
	assert.ErrorIs(t, err, domain.ErrMissingIdentity)

	_, err = f.svc.Create(context.Background(), domain.CreateExclusionRequest{CustomerEmail: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidStore)
}

func TestDeactivateExclusion(t *testing.T) {
	f := newExclusionFixture(t)

	exclusion, err := f.svc.Create(f.ctx(), domain.CreateExclusionRequest{CustomerEmail: "vip@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Deactivate(f.ctx(), exclusion.ID.String()))

	active, err := f.svc.ListActive(f.ctx())
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deactivating an already inactive entry is a no-op.
	require.NoError(t, f.svc.Deactivate(f.ctx(), exclusion.ID.String()))

	var audits []auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "exclusion.deactivate").Find(&audits).Error)
	assert.Len(t, audits, 1)

	err = f.svc.Deactivate(f.ctx(), f.storeID.String())
	assert.ErrorIs(t, err, domain.ErrExclusionNotFound)
	err = f.svc.Deactivate(f.ctx(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestMatchAgainstActiveEntries(t *testing.T) {
	f := newExclusionFixture(t)

	_, err := f.svc.Create(f.ctx(), domain.CreateExclusionRequest{CustomerEmail: "vip@example.com"})
	require.NoError(t, err)
	phoneEntry, err := f.svc.Create(f.ctx(), domain.CreateExclusionRequest{CustomerPhone: "+44 7700 900123"})
	require.NoError(t, err)

	matched, err := f.svc.Match(f.ctx(), "VIP@example.com", "", "")
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = f.svc.Match(f.ctx(), "", "", "44 7700 900123")
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = f.svc.Match(f.ctx(), "stranger@example.com", "", "")
	require.NoError(t, err)
	assert.False(t, matched)

	// Deactivated entries no longer suppress anything.
	require.NoError(t, f.svc.Deactivate(f.ctx(), phoneEntry.ID.String()))
	matched, err = f.svc.Match(f.ctx(), "", "", "44 7700 900123")
	require.NoError(t, err)
	assert.False(t, matched)
}
