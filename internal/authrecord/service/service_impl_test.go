package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/authrecord/domain"
	"github.com/ecomprotect/sentinel/internal/authrecord/repository"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authrecordFixture struct {
	db     *gorm.DB
	svc    domain.Service
	clk    *clock.FakeClock
	userID snowflake.ID
}

func newAuthrecordFixture(t *testing.T) *authrecordFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Session{},
		&domain.Account{},
		&domain.Verification{},
		&domain.MFAToken{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})

	return &authrecordFixture{db: db, svc: svc, clk: clk, userID: node.Generate()}
}

func TestSessionLifecycle(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID:    f.userID,
		Token:     "tok_abc123",
		TTL:       time.Hour,
		IPAddress: "203.0.113.9",
	})
	require.NoError(t, err)
	require.NotNil(t, session.IPAddress)
	assert.Equal(t, "203.0.113.9", *session.IPAddress)

	resolved, err := f.svc.ResolveSession(ctx, "tok_abc123")
	require.NoError(t, err)
	assert.Equal(t, f.userID, resolved.UserID)

	f.clk.Advance(2 * time.Hour)
	_, err = f.svc.ResolveSession(ctx, "tok_abc123")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	// The expired row was removed during resolution.
	var count int64
	require.NoError(t, f.db.Model(&domain.Session{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSessionValidation(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, domain.CreateSessionRequest{Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = f.svc.CreateSession(ctx, domain.CreateSessionRequest{UserID: f.userID})
	assert.ErrorIs(t, err, domain.ErrMissingToken)

	_, err = f.svc.ResolveSession(ctx, "unknown-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPurgeExpiredSessions(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID: f.userID, Token: "tok_short", TTL: time.Minute,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID: f.userID, Token: "tok_long", TTL: 48 * time.Hour,
	})
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	purged, err := f.svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = f.svc.ResolveSession(ctx, "tok_long")
	assert.NoError(t, err)
}

func TestVerificationConsumeOnce(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueVerification(ctx, "owner@acme.example.com", "482913", time.Hour)
	require.NoError(t, err)

	err = f.svc.ConsumeVerification(ctx, "owner@acme.example.com", "000000")
	assert.ErrorIs(t, err, domain.ErrVerificationInvalid)

	require.NoError(t, f.svc.ConsumeVerification(ctx, "owner@acme.example.com", "482913"))

	// A consumed challenge cannot be replayed.
	err = f.svc.ConsumeVerification(ctx, "owner@acme.example.com", "482913")
	assert.ErrorIs(t, err, domain.ErrVerificationInvalid)
}

func TestVerificationExpiry(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueVerification(ctx, "owner@acme.example.com", "482913", 10*time.Minute)
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	err = f.svc.ConsumeVerification(ctx, "owner@acme.example.com", "482913")
	assert.ErrorIs(t, err, domain.ErrVerificationInvalid)
}

func TestMFATokenConsumeOnce(t *testing.T) {
	f := newAuthrecordFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueMFAToken(ctx, f.userID, domain.MFATokenTOTP, "915402", 10*time.Minute)
	require.NoError(t, err)

	err = f.svc.ConsumeMFAToken(ctx, f.userID, "111111")
	assert.ErrorIs(t, err, domain.ErrMFATokenInvalid)

	require.NoError(t, f.svc.ConsumeMFAToken(ctx, f.userID, "915402"))

	err = f.svc.ConsumeMFAToken(ctx, f.userID, "915402")
	assert.ErrorIs(t, err, domain.ErrMFATokenInvalid)
}
