// internal/progress/ledger.go
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/model"
	"bgde_trainer/internal/repository"

	"gorm.io/gorm"
)

// dateLayout is the calendar-day format used for streak bookkeeping.
const dateLayout = "2006-01-02"

// DateOf truncates a timestamp to its calendar day string.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}

// Ledger tracks XP, the daily streak and per-item practice stats. The
// in-memory state is authoritative during a process lifetime; Persist
// writes it through the key-value store, Load hydrates it back.
//
// All exported methods are safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	snap  model.LedgerSnapshot
	stats map[string]model.PracticeStat
	kv    repository.KVStore
}

func NewLedger(kv repository.KVStore) *Ledger {
	return &Ledger{
		stats: make(map[string]model.PracticeStat),
		kv:    kv,
	}
}

// Load hydrates the ledger from storage. A snapshot carrying a stale
// lastPracticeDate has its daily XP reset, matching a new calendar day.
// Missing keys mean a first run and leave the zero state in place.
func (l *Ledger) Load(ctx context.Context, db *gorm.DB, now time.Time) error {
	logger := middleware.GetLogger(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.kv.Get(ctx, db, config.LedgerKey)
	switch {
	case err == nil:
		var snap model.LedgerSnapshot
		if uerr := json.Unmarshal([]byte(raw), &snap); uerr != nil {
			logger.Warn("Stored progress snapshot unreadable, starting fresh", "error", uerr)
		} else {
			l.snap = snap
		}
	case errors.Is(err, model.ErrNotFound):
		// first run
	default:
		return fmt.Errorf("progress.Ledger.Load: %w", err)
	}

	if l.snap.LastPracticeDate != "" && l.snap.LastPracticeDate != DateOf(now) {
		l.snap.DailyXP = 0
	}

	rawStats, err := l.kv.Get(ctx, db, config.PracticeStatsKey)
	switch {
	case err == nil:
		stats := make(map[string]model.PracticeStat)
		if uerr := json.Unmarshal([]byte(rawStats), &stats); uerr != nil {
			logger.Warn("Stored practice stats unreadable, starting fresh", "error", uerr)
		} else {
			l.stats = stats
		}
	case errors.Is(err, model.ErrNotFound):
		// first run
	default:
		return fmt.Errorf("progress.Ledger.Load: %w", err)
	}
	return nil
}

// Persist writes the snapshot and practice stats through the given handle,
// typically a transaction shared with the review record write.
func (l *Ledger) Persist(ctx context.Context, tx *gorm.DB) error {
	l.mu.Lock()
	snap := l.snap
	stats := make(map[string]model.PracticeStat, len(l.stats))
	for k, v := range l.stats {
		stats[k] = v
	}
	l.mu.Unlock()

	rawSnap, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("progress.Ledger.Persist: %w", errors.Join(model.ErrPersistence, err))
	}
	rawStats, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("progress.Ledger.Persist: %w", errors.Join(model.ErrPersistence, err))
	}

	if err := l.kv.Put(ctx, tx, config.LedgerKey, string(rawSnap)); err != nil {
		return err
	}
	return l.kv.Put(ctx, tx, config.PracticeStatsKey, string(rawStats))
}

// State is a full copy of the ledger, used as a rollback point.
type State struct {
	Snap  model.LedgerSnapshot
	Stats map[string]model.PracticeStat
}

// Capture copies the current state.
func (l *Ledger) Capture() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := make(map[string]model.PracticeStat, len(l.stats))
	for k, v := range l.stats {
		stats[k] = v
	}
	return State{Snap: l.snap, Stats: stats}
}

// Restore rewinds the ledger to a captured state.
func (l *Ledger) Restore(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = s.Snap
	l.stats = make(map[string]model.PracticeStat, len(s.Stats))
	for k, v := range s.Stats {
		l.stats[k] = v
	}
}

// AwardXP adds a positive amount to the running totals.
func (l *Ledger) AwardXP(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("progress.Ledger.AwardXP: amount %d: %w", amount, model.ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap.TotalXP += amount
	l.snap.DailyXP += amount
	return nil
}

// RecordPracticeDay maintains the daily streak. Repeat calls on the same
// day are no-ops, practicing on consecutive days extends the streak, and a
// missed day restarts it at 1.
func (l *Ledger) RecordPracticeDay(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := DateOf(now)
	switch {
	case l.snap.LastPracticeDate == today:
		return
	case l.snap.LastPracticeDate == DateOf(now.AddDate(0, 0, -1)):
		l.snap.CurrentStreak++
	default:
		l.snap.CurrentStreak = 1
	}
	l.snap.LastPracticeDate = today
}

// ApplyReview folds one graded answer into the per-item stats.
func (l *Ledger) ApplyReview(itemID string, correct bool, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stat := l.stats[itemID]
	if correct {
		stat.Correct++
	} else {
		stat.Incorrect++
	}
	stat.LastPracticed = now
	l.stats[itemID] = stat
}

// Snapshot returns a copy of the persisted part of the ledger.
func (l *Ledger) Snapshot() model.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Summary assembles the dashboard view.
func (l *Ledger) Summary(dailyTarget int) model.ProgressSummary {
	l.mu.Lock()
	snap := l.snap
	l.mu.Unlock()

	info := LevelInfoForXP(snap.TotalXP)
	return model.ProgressSummary{
		TotalXP:          snap.TotalXP,
		DailyXP:          snap.DailyXP,
		DailyTarget:      dailyTarget,
		DailyGoalReached: snap.DailyXP >= dailyTarget,
		CurrentStreak:    snap.CurrentStreak,
		LastPracticeDate: snap.LastPracticeDate,
		Level:            info.Level,
		LevelProgress:    info.LevelProgress,
		NextLevelXP:      info.NextLevelXP,
	}
}

// WeakItems lists items that need attention: success rate under 80% or
// fewer than three attempts. Worst success rate first, limited to limit
// entries (0 means no limit).
func (l *Ledger) WeakItems(limit int) []model.WeakItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.WeakItem, 0, len(l.stats))
	for id, stat := range l.stats {
		attempts := stat.Correct + stat.Incorrect
		if attempts == 0 {
			continue
		}
		rate := float64(stat.Correct) / float64(attempts)
		if rate >= 0.8 && attempts >= 3 {
			continue
		}
		out = append(out, model.WeakItem{
			ItemID:        id,
			Correct:       stat.Correct,
			Incorrect:     stat.Incorrect,
			SuccessRate:   rate,
			LastPracticed: stat.LastPracticed,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate == out[j].SuccessRate {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].SuccessRate < out[j].SuccessRate
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Reset zeroes the ledger and removes its stored keys.
func (l *Ledger) Reset(ctx context.Context, tx *gorm.DB) error {
	l.mu.Lock()
	l.snap = model.LedgerSnapshot{}
	l.stats = make(map[string]model.PracticeStat)
	l.mu.Unlock()

	if err := l.kv.Delete(ctx, tx, config.LedgerKey); err != nil {
		return err
	}
	return l.kv.Delete(ctx, tx, config.PracticeStatsKey)
}
