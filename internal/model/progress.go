// internal/model/progress.go
package model

import "time"

// LedgerSnapshot is the persisted part of the progress ledger, stored under
// the "learning-session" key. Everything level-related is derived on read.
type LedgerSnapshot struct {
	CurrentStreak    int    `json:"currentStreak"`
	DailyXP          int    `json:"dailyXP"`
	LastPracticeDate string `json:"lastPracticeDate,omitempty"` // YYYY-MM-DD
	TotalXP          int    `json:"totalXP"`
}

// LevelInfo is computed from TotalXP, never stored.
type LevelInfo struct {
	Level               int     `json:"level"`
	CurrentLevelStartXP int     `json:"current_level_start_xp"`
	NextLevelXP         int     `json:"next_level_xp"`
	LevelProgress       float64 `json:"level_progress"` // 0..100
}

// PracticeStat tracks raw correctness per item, independent of scheduling.
type PracticeStat struct {
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	LastPracticed time.Time `json:"lastPracticed"`
}

// WeakItem is a practice stat surfaced for the recommendation endpoint.
type WeakItem struct {
	ItemID        string    `json:"item_id"`
	Correct       int       `json:"correct"`
	Incorrect     int       `json:"incorrect"`
	SuccessRate   float64   `json:"success_rate"` // 0..1
	LastPracticed time.Time `json:"last_practiced"`
}

// ProgressSummary is the dashboard view of the ledger.
type ProgressSummary struct {
	TotalXP          int     `json:"total_xp"`
	DailyXP          int     `json:"daily_xp"`
	DailyTarget      int     `json:"daily_target"`
	DailyGoalReached bool    `json:"daily_goal_reached"`
	CurrentStreak    int     `json:"current_streak"`
	LastPracticeDate string  `json:"last_practice_date,omitempty"`
	Level            int     `json:"level"`
	LevelProgress    float64 `json:"level_progress"`
	NextLevelXP      int     `json:"next_level_xp"`
}
