package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/notification/domain"
	"github.com/ecomprotect/sentinel/internal/notification/repository"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notificationFixture struct {
	db      *gorm.DB
	svc     domain.Service
	storeID snowflake.ID
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.EmailNotification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	return &notificationFixture{db: db, svc: svc, storeID: node.Generate()}
}

func TestEnqueueNotification(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))

	notification, err := f.svc.Enqueue(ctx, domain.EnqueueRequest{
		RecipientEmail: "  ops@acme.example.com ",
		RecipientType:  domain.RecipientOpsTeam,
		Subject:        " Flagged order ",
		Content:        "Order ORD-1001 was flagged at risk level high.",
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@acme.example.com", notification.RecipientEmail)
	assert.Equal(t, "Flagged order", notification.Subject)
	assert.Equal(t, domain.DeliverySent, notification.Status)
	require.NotNil(t, notification.StoreID)
	assert.Equal(t, f.storeID, *notification.StoreID)
}

func TestEnqueueDefaultsRecipientType(t *testing.T) {
	f := newNotificationFixture(t)

	notification, err := f.svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "owner@store.example.com",
		Subject:        "Welcome",
		Content:        "Your application is under review.",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RecipientStoreAdmin, notification.RecipientType)
	assert.Nil(t, notification.StoreID)

	_, err = f.svc.Enqueue(context.Background(), domain.EnqueueRequest{Subject: "no recipient"})
	assert.ErrorIs(t, err, domain.ErrMissingRecipient)
}

func TestReportDelivery(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))

	notification, err := f.svc.Enqueue(ctx, domain.EnqueueRequest{
		RecipientEmail: "ops@acme.example.com",
		RecipientType:  domain.RecipientOpsTeam,
		Subject:        "Flagged order",
		Content:        "body",
	})
	require.NoError(t, err)

	err = f.svc.ReportDelivery(ctx, notification.ID.String(), domain.DeliveryFailed, "mailbox full")
	require.NoError(t, err)

	var stored domain.EmailNotification
	require.NoError(t, f.db.First(&stored, "id = ?", notification.ID).Error)
	assert.Equal(t, domain.DeliveryFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, "mailbox full", *stored.ErrorMessage)

	err = f.svc.ReportDelivery(ctx, notification.ID.String(), "bounced", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	err = f.svc.ReportDelivery(ctx, "not-an-id", domain.DeliveryDelivered, "")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListByStoreScopedToTenant(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))

	for i := 0; i < 3; i++ {
		_, err := f.svc.Enqueue(ctx, domain.EnqueueRequest{
			RecipientEmail: "ops@acme.example.com",
			RecipientType:  domain.RecipientOpsTeam,
			Subject:        "Flagged order",
			Content:        "body",
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Enqueue(context.Background(), domain.EnqueueRequest{
		RecipientEmail: "platform@sentinel.example.com",
		Subject:        "platform notice",
		Content:        "body",
	})
	require.NoError(t, err)

	notifications, err := f.svc.ListByStore(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, notifications, 3)

	_, err = f.svc.ListByStore(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrInvalidStore)
}
