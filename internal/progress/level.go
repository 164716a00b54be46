// internal/progress/level.go
package progress

import "bgde_trainer/internal/model"

// Level thresholds: level 2 starts at 200 XP, and each following level
// widens by 100 XP (gaps of 300, 400, 500, ...).
const (
	firstLevelThreshold = 200
	firstGap            = 300
	gapGrowth           = 100
)

// LevelForXP maps a total XP amount to a level, starting at 1.
func LevelForXP(totalXP int) int {
	level := 1
	threshold := firstLevelThreshold
	gap := firstGap
	for totalXP >= threshold {
		level++
		threshold += gap
		gap += gapGrowth
	}
	return level
}

// LevelInfoForXP derives the level together with its XP window and the
// percentage of the window covered so far.
func LevelInfoForXP(totalXP int) model.LevelInfo {
	level := 1
	start := 0
	threshold := firstLevelThreshold
	gap := firstGap
	for totalXP >= threshold {
		level++
		start = threshold
		threshold += gap
		gap += gapGrowth
	}

	info := model.LevelInfo{
		Level:               level,
		CurrentLevelStartXP: start,
		NextLevelXP:         threshold,
	}
	span := threshold - start
	if span > 0 {
		info.LevelProgress = float64(totalXP-start) / float64(span) * 100
	}
	if info.LevelProgress < 0 {
		info.LevelProgress = 0
	}
	if info.LevelProgress > 100 {
		info.LevelProgress = 100
	}
	return info
}
