// internal/srs/store_test.go
package srs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bgde_trainer/internal/model"
	"bgde_trainer/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDBStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, db.AutoMigrate(&repository.KVEntry{}))
	return db
}

func putJSON(t *testing.T, db *gorm.DB, kv repository.KVStore, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, kv.Put(context.Background(), db, key, string(raw)))
}

func TestStore_GetOrCreate_FreshRecord(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	store := NewStore(repository.NewGormKVStore())

	rec, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)

	assert.Equal(t, "w1", rec.ItemID)
	assert.Equal(t, model.DirectionDEBG, rec.Direction)
	assert.Equal(t, DefaultEaseFactor, rec.EaseFactor)
	assert.Equal(t, 0, rec.Repetitions)
	assert.Equal(t, testNow, rec.NextReview, "fresh records are due immediately")
	assert.Equal(t, model.ReviewSchemaVersion, rec.SchemaVersion)
}

func TestStore_GetOrCreate_MigratesLegacyCounters(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	kv := repository.NewGormKVStore()
	store := NewStore(kv)

	putJSON(t, db, kv, LegacyReviewKey("w1"), model.LegacyReviewRecord{
		WordID:         "w1",
		EasinessFactor: 2.2,
		Interval:       6,
		Repetitions:    2,
		NextReviewDate: "2026-03-14T00:00:00Z",
		LastReviewDate: "2026-03-08T00:00:00Z",
		TotalReviews:   9,
		CorrectAnswers: 7,
		Streak:         3,
		Created:        "2026-01-01T00:00:00Z",
	})

	rec, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)

	assert.Equal(t, 2.2, rec.EaseFactor)
	assert.Equal(t, 6, rec.Interval)
	assert.Equal(t, 2, rec.Repetitions)
	assert.Equal(t, 9, rec.TotalReviews)
	assert.Equal(t, 7, rec.CorrectAnswers)
	assert.Equal(t, 3, rec.Streak)
	assert.Equal(t, model.DirectionDEBG, rec.Direction)
	assert.Equal(t, model.ReviewSchemaVersion, rec.SchemaVersion)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), rec.NextReview)
	require.NotNil(t, rec.LastReview)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), *rec.LastReview)
}

func TestStore_GetOrCreate_MigrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	kv := repository.NewGormKVStore()
	store := NewStore(kv)

	putJSON(t, db, kv, LegacyReviewKey("w1"), model.LegacyReviewRecord{
		WordID:         "w1",
		EasinessFactor: 2.2,
		Interval:       6,
		Repetitions:    2,
		NextReviewDate: "2026-03-14T00:00:00Z",
		TotalReviews:   9,
		CorrectAnswers: 7,
		Created:        "2026-01-01T00:00:00Z",
	})

	first, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	second, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Once saved, the versioned key wins over the legacy entry and the
	// legacy payload stays untouched.
	require.NoError(t, store.Save(ctx, db, first))
	require.NoError(t, Grade(first, 5, testNow))
	require.NoError(t, store.Save(ctx, db, first))

	third, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	assert.Equal(t, 10, third.TotalReviews)
	assert.Equal(t, 3, third.Repetitions)

	legacyRaw, err := kv.Get(ctx, db, LegacyReviewKey("w1"))
	require.NoError(t, err)
	var legacy model.LegacyReviewRecord
	require.NoError(t, json.Unmarshal([]byte(legacyRaw), &legacy))
	assert.Equal(t, 9, legacy.TotalReviews, "legacy entries are read-only")
}

func TestStore_GetOrCreate_DirectionsScheduledIndependently(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	store := NewStore(repository.NewGormKVStore())

	debg, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	require.NoError(t, Grade(debg, 5, testNow))
	require.NoError(t, store.Save(ctx, db, debg))

	bgde, err := store.GetOrCreate(ctx, db, "w1", model.DirectionBGDE, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, bgde.Repetitions, "other direction stays fresh")
}

func TestStore_GetOrCreate_MalformedLegacyFallsBackFresh(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	kv := repository.NewGormKVStore()
	store := NewStore(kv)

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"wordId": broken`},
		{"ease factor below floor", `{"wordId":"w1","easinessFactor":0.5,"interval":1,"repetitions":1,"nextReviewDate":"2026-03-14T00:00:00Z"}`},
		{"unparseable next review", `{"wordId":"w1","easinessFactor":2.5,"interval":1,"repetitions":1,"nextReviewDate":"soon"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, kv.Put(ctx, db, LegacyReviewKey("w1"), tt.payload))

			rec, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
			require.NoError(t, err, "malformed legacy data must not block practice")
			assert.Equal(t, DefaultEaseFactor, rec.EaseFactor)
			assert.Equal(t, 0, rec.TotalReviews)
		})
	}
}

func TestStore_ListDue_SortedMostOverdueFirst(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	store := NewStore(repository.NewGormKVStore())

	save := func(id string, nextReview time.Time) {
		rec := NewRecord(id, model.DirectionDEBG, testNow)
		rec.NextReview = nextReview
		require.NoError(t, store.Save(ctx, db, rec))
	}
	save("w1", testNow.AddDate(0, 0, -1))
	save("w2", testNow.AddDate(0, 0, -7))
	save("w3", testNow.AddDate(0, 0, 3)) // not due
	save("w4", testNow)

	// Other direction must not leak in.
	other := NewRecord("w9", model.DirectionBGDE, testNow)
	require.NoError(t, store.Save(ctx, db, other))

	due, err := store.ListDue(ctx, db, model.DirectionDEBG, testNow)
	require.NoError(t, err)

	ids := make([]string, 0, len(due))
	for _, rec := range due {
		ids = append(ids, rec.ItemID)
	}
	assert.Equal(t, []string{"w2", "w1", "w4"}, ids)
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	store := NewStore(repository.NewGormKVStore())

	r1 := NewRecord("w1", model.DirectionDEBG, testNow)
	r1.EaseFactor = 2.0
	r1.TotalReviews = 10
	r1.CorrectAnswers = 8
	r1.NextReview = testNow.AddDate(0, 0, 2)
	require.NoError(t, store.Save(ctx, db, r1))

	r2 := NewRecord("w2", model.DirectionDEBG, testNow)
	r2.EaseFactor = 3.0
	require.NoError(t, store.Save(ctx, db, r2))

	stats, err := store.Stats(ctx, db, model.DirectionDEBG, testNow)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Due, "only the unreviewed record is due")
	assert.InDelta(t, 2.5, stats.AvgEaseFactor, 1e-9)
	assert.InDelta(t, 80.0, stats.AvgAccuracy, 1e-9, "records without reviews are excluded")
}

func TestStore_ClearAll_RemovesLegacyEntriesToo(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	kv := repository.NewGormKVStore()
	store := NewStore(kv)

	require.NoError(t, store.Save(ctx, db, NewRecord("w1", model.DirectionDEBG, testNow)))
	require.NoError(t, store.Save(ctx, db, NewRecord("w1", model.DirectionBGDE, testNow)))
	require.NoError(t, kv.Put(ctx, db, LegacyReviewKey("w1"), `{"wordId":"w1"}`))

	n, err := store.ClearAll(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = kv.Get(ctx, db, LegacyReviewKey("w1"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_ClearAll_ClearedStateStaysCleared(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBStore(t)
	kv := repository.NewGormKVStore()
	store := NewStore(kv)

	putJSON(t, db, kv, LegacyReviewKey("w1"), model.LegacyReviewRecord{
		WordID:         "w1",
		EasinessFactor: 2.2,
		Interval:       6,
		Repetitions:    2,
		NextReviewDate: "2026-03-14T00:00:00Z",
		TotalReviews:   9,
		CorrectAnswers: 7,
	})

	rec, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	require.Equal(t, 9, rec.TotalReviews, "legacy record migrated before the clear")
	require.NoError(t, store.Save(ctx, db, rec))

	_, err = store.ClearAll(ctx, db)
	require.NoError(t, err)

	after, err := store.GetOrCreate(ctx, db, "w1", model.DirectionDEBG, testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalReviews, "a cleared item must come back fresh, not re-migrated")
	assert.Equal(t, 0, after.Repetitions)
	assert.Equal(t, DefaultEaseFactor, after.EaseFactor)
}
