// internal/service/progress_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"bgde_trainer/internal/model"
	"bgde_trainer/internal/progress"
	"bgde_trainer/internal/repository"
	"bgde_trainer/internal/srs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_Summary(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBPractice(t)
	kv := repository.NewGormKVStore()
	store := srs.NewStore(kv)
	ledger := progress.NewLedger(kv)
	svc := NewProgressService(db, store, ledger, testConfig())

	require.NoError(t, ledger.AwardXP(60))
	ledger.RecordPracticeDay(time.Now())

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, sum.TotalXP)
	assert.True(t, sum.DailyGoalReached, "60 XP beats the 50 XP target")
	assert.Equal(t, 1, sum.Level)
}

func TestProgressService_SRSStats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBPractice(t)
	kv := repository.NewGormKVStore()
	store := srs.NewStore(kv)
	ledger := progress.NewLedger(kv)
	svc := NewProgressService(db, store, ledger, testConfig())

	now := time.Now()
	rec := srs.NewRecord("w1", model.DirectionDEBG, now)
	require.NoError(t, store.Save(ctx, db, rec))

	stats, err := svc.SRSStats(ctx, model.DirectionDEBG)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Due)

	empty, err := svc.SRSStats(ctx, model.DirectionBGDE)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}

func TestProgressService_ResetAndClear(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBPractice(t)
	kv := repository.NewGormKVStore()
	store := srs.NewStore(kv)
	ledger := progress.NewLedger(kv)
	svc := NewProgressService(db, store, ledger, testConfig())

	now := time.Now()
	require.NoError(t, ledger.AwardXP(30))
	require.NoError(t, ledger.Persist(ctx, db))
	require.NoError(t, store.Save(ctx, db, srs.NewRecord("w1", model.DirectionDEBG, now)))
	require.NoError(t, store.Save(ctx, db, srs.NewRecord("w1", model.DirectionBGDE, now)))

	require.NoError(t, svc.ResetProgress(ctx))
	assert.Equal(t, 0, ledger.Snapshot().TotalXP)

	removed, err := svc.ClearReviews(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	stats, err := svc.SRSStats(ctx, model.DirectionDEBG)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}
