package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ecomprotect/sentinel/internal/clock"
	"github.com/ecomprotect/sentinel/internal/reportcache/domain"
	"github.com/ecomprotect/sentinel/internal/reportcache/repository"
	"github.com/ecomprotect/sentinel/internal/storectx"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reportcacheFixture struct {
	db      *gorm.DB
	svc     domain.Service
	clk     *clock.FakeClock
	storeID snowflake.ID
}

func newReportcacheFixture(t *testing.T) *reportcacheFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ReportCache{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})

	return &reportcacheFixture{db: db, svc: svc, clk: clk, storeID: node.Generate()}
}

func countingCompute(calls *int, result any) domain.ComputeFunc {
	return func(ctx context.Context) (any, error) {
		*calls++
		return result, nil
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	f := newReportcacheFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))
	params := map[string]any{"months": 6}

	calls := 0
	compute := countingCompute(&calls, map[string]any{"total_orders": 42})

	first, err := f.svc.GetOrCompute(ctx, "risk_summary", params, time.Hour, compute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_orders":42}`, string(first))
	assert.Equal(t, 1, calls)

	second, err := f.svc.GetOrCompute(ctx, "risk_summary", params, time.Hour, compute)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, calls)
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	f := newReportcacheFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))
	params := map[string]any{"months": 6}

	calls := 0
	compute := countingCompute(&calls, map[string]any{"total_orders": 42})

	_, err := f.svc.GetOrCompute(ctx, "risk_summary", params, time.Hour, compute)
	require.NoError(t, err)

	f.clk.Advance(2 * time.Hour)
	_, err = f.svc.GetOrCompute(ctx, "risk_summary", params, time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrComputeDistinguishesParameters(t *testing.T) {
	f := newReportcacheFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))

	calls := 0
	compute := countingCompute(&calls, map[string]any{"total_orders": 42})

	_, err := f.svc.GetOrCompute(ctx, "risk_summary", map[string]any{"months": 6}, time.Hour, compute)
	require.NoError(t, err)
	_, err = f.svc.GetOrCompute(ctx, "risk_summary", map[string]any{"months": 12}, time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = f.svc.GetOrCompute(ctx, "", nil, time.Hour, compute)
	assert.ErrorIs(t, err, domain.ErrMissingReportType)
}

func TestPurgeExpiredReports(t *testing.T) {
	f := newReportcacheFixture(t)
	ctx := storectx.WithStoreID(context.Background(), int64(f.storeID))

	calls := 0
	compute := countingCompute(&calls, map[string]any{"total_orders": 42})

	_, err := f.svc.GetOrCompute(ctx, "risk_summary", nil, time.Minute, compute)
	require.NoError(t, err)
	_, err = f.svc.GetOrCompute(ctx, "exclusion_summary", nil, 24*time.Hour, compute)
	require.NoError(t, err)

	f.clk.Advance(time.Hour)
	purged, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var count int64
	require.NoError(t, f.db.Model(&domain.ReportCache{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
