// internal/srs/store.go
package srs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/model"
	"bgde_trainer/internal/repository"

	"gorm.io/gorm"
)

// Store owns the persisted review records. Callers pass the *gorm.DB (or
// transaction handle) so the enclosing service controls write atomicity.
type Store struct {
	kv repository.KVStore
}

func NewStore(kv repository.KVStore) *Store {
	return &Store{kv: kv}
}

// ReviewKey builds the versioned per-direction key.
func ReviewKey(itemID string, direction model.Direction) string {
	return config.ReviewKeyPrefix + itemID + "_" + string(direction)
}

// LegacyReviewKey builds the direction-less schema-v1 key. Legacy entries
// are read-only migration sources; only ClearAll removes them.
func LegacyReviewKey(itemID string) string {
	return config.LegacyReviewKeyPrefix + itemID
}

// GetOrCreate returns the record for (itemID, direction), migrating a
// legacy record on first access or seeding a fresh default when nothing is
// stored. Migration failures degrade to a fresh record so one corrupt
// entry cannot block practice.
func (s *Store) GetOrCreate(ctx context.Context, db *gorm.DB, itemID string, direction model.Direction, now time.Time) (*model.ReviewRecord, error) {
	logger := middleware.GetLogger(ctx)

	raw, err := s.kv.Get(ctx, db, ReviewKey(itemID, direction))
	if err == nil {
		var rec model.ReviewRecord
		if uerr := json.Unmarshal([]byte(raw), &rec); uerr != nil {
			logger.Warn("Stored review record unreadable, starting fresh",
				"item_id", itemID,
				"direction", string(direction),
				"error", uerr,
			)
			return NewRecord(itemID, direction, now), nil
		}
		return &rec, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("srs.Store.GetOrCreate: %w", err)
	}

	// No versioned record yet; check for a schema-v1 entry to migrate.
	legacyRaw, lerr := s.kv.Get(ctx, db, LegacyReviewKey(itemID))
	if lerr != nil {
		if errors.Is(lerr, model.ErrNotFound) {
			return NewRecord(itemID, direction, now), nil
		}
		return nil, fmt.Errorf("srs.Store.GetOrCreate: %w", lerr)
	}

	rec, merr := migrateLegacy(itemID, direction, legacyRaw, now)
	if merr != nil {
		logger.Warn("Legacy review record migration failed, starting fresh",
			"item_id", itemID,
			"direction", string(direction),
			"error", merr,
		)
		return NewRecord(itemID, direction, now), nil
	}

	logger.Info("Migrated legacy review record",
		"item_id", itemID,
		"direction", string(direction),
	)
	return rec, nil
}

// Save persists the record under its versioned key.
func (s *Store) Save(ctx context.Context, tx *gorm.DB, rec *model.ReviewRecord) error {
	rec.SchemaVersion = model.ReviewSchemaVersion
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("srs.Store.Save: %w", errors.Join(model.ErrPersistence, err))
	}
	return s.kv.Put(ctx, tx, ReviewKey(rec.ItemID, rec.Direction), string(raw))
}

// ListAll returns every stored record for one direction, keyed by item ID.
// Unreadable entries are skipped with a warning.
func (s *Store) ListAll(ctx context.Context, db *gorm.DB, direction model.Direction) (map[string]*model.ReviewRecord, error) {
	logger := middleware.GetLogger(ctx)

	entries, err := s.kv.ListByPrefix(ctx, db, config.ReviewKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("srs.Store.ListAll: %w", err)
	}

	suffix := "_" + string(direction)
	out := make(map[string]*model.ReviewRecord)
	for key, raw := range entries {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		var rec model.ReviewRecord
		if uerr := json.Unmarshal([]byte(raw), &rec); uerr != nil {
			logger.Warn("Skipping unreadable review record", "key", key, "error", uerr)
			continue
		}
		out[rec.ItemID] = &rec
	}
	return out, nil
}

// ListDue returns the records due at now for one direction, most overdue
// first (ties broken by item ID for determinism).
func (s *Store) ListDue(ctx context.Context, db *gorm.DB, direction model.Direction, now time.Time) ([]*model.ReviewRecord, error) {
	all, err := s.ListAll(ctx, db, direction)
	if err != nil {
		return nil, err
	}

	due := make([]*model.ReviewRecord, 0, len(all))
	for _, rec := range all {
		if IsDue(rec, now) {
			due = append(due, rec)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].ItemID < due[j].ItemID
		}
		return due[i].NextReview.Before(due[j].NextReview)
	})
	return due, nil
}

// Stats aggregates the records of one direction.
func (s *Store) Stats(ctx context.Context, db *gorm.DB, direction model.Direction, now time.Time) (*model.SRSStats, error) {
	all, err := s.ListAll(ctx, db, direction)
	if err != nil {
		return nil, err
	}

	stats := &model.SRSStats{Direction: direction, Total: len(all)}
	var efSum float64
	var accSum float64
	var reviewed int
	for _, rec := range all {
		if IsDue(rec, now) {
			stats.Due++
		}
		efSum += rec.EaseFactor
		if rec.TotalReviews > 0 {
			accSum += float64(rec.CorrectAnswers) / float64(rec.TotalReviews) * 100
			reviewed++
		}
	}
	if stats.Total > 0 {
		stats.AvgEaseFactor = efSum / float64(stats.Total)
	}
	if reviewed > 0 {
		stats.AvgAccuracy = accSum / float64(reviewed)
	}
	return stats, nil
}

// ClearAll removes every record, both directions, legacy entries included.
// Leaving the legacy keys behind would let the next GetOrCreate re-migrate
// them and resurrect the cleared scheduling state.
func (s *Store) ClearAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	n, err := s.kv.DeleteByPrefix(ctx, tx, config.ReviewKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("srs.Store.ClearAll: %w", err)
	}
	legacy, err := s.kv.DeleteByPrefix(ctx, tx, config.LegacyReviewKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("srs.Store.ClearAll: %w", err)
	}
	return n + legacy, nil
}

// migrateLegacy maps a schema-v1 payload onto the current layout. Review
// counters carry over; the requested direction is stamped onto the result.
func migrateLegacy(itemID string, direction model.Direction, raw string, now time.Time) (*model.ReviewRecord, error) {
	var legacy model.LegacyReviewRecord
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMigration, err)
	}
	if legacy.EasinessFactor < MinEaseFactor || legacy.Interval < 0 || legacy.Repetitions < 0 {
		return nil, fmt.Errorf("%w: implausible scheduling fields", model.ErrMigration)
	}

	nextReview, err := parseLegacyDate(legacy.NextReviewDate)
	if err != nil {
		return nil, fmt.Errorf("%w: nextReviewDate: %v", model.ErrMigration, err)
	}

	rec := &model.ReviewRecord{
		ItemID:         itemID,
		Direction:      direction,
		EaseFactor:     legacy.EasinessFactor,
		Interval:       legacy.Interval,
		Repetitions:    legacy.Repetitions,
		NextReview:     nextReview,
		TotalReviews:   legacy.TotalReviews,
		CorrectAnswers: legacy.CorrectAnswers,
		Streak:         legacy.Streak,
		SchemaVersion:  model.ReviewSchemaVersion,
		CreatedAt:      now,
	}
	if last, lerr := parseLegacyDate(legacy.LastReviewDate); lerr == nil {
		rec.LastReview = &last
	}
	if created, cerr := parseLegacyDate(legacy.Created); cerr == nil {
		rec.CreatedAt = created
	}
	return rec, nil
}

func parseLegacyDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
