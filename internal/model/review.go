// internal/model/review.go
package model

import (
	"fmt"
	"time"
)

// Direction identifies which language is the prompt and which is the answer.
// Each direction of the same item is scheduled independently.
type Direction string

const (
	DirectionDEBG Direction = "de-bg" // German prompt, Bulgarian answer
	DirectionBGDE Direction = "bg-de" // Bulgarian prompt, German answer
)

// ParseDirection validates a direction string from the outside world.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionDEBG, DirectionBGDE:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q: %w", s, ErrInvalidInput)
	}
}

// ReviewSchemaVersion is the current persisted layout of ReviewRecord.
const ReviewSchemaVersion = 2

// ReviewRecord is the per-(item, direction) SM-2 scheduling state.
// It is created on first grading, mutated only by the grading step, and
// removed only by an explicit clear-all.
type ReviewRecord struct {
	ItemID         string     `json:"itemId"`
	Direction      Direction  `json:"direction"`
	EaseFactor     float64    `json:"easeFactor"` // never below 1.3
	Interval       int        `json:"interval"`   // days until next due
	Repetitions    int        `json:"repetitions"`
	NextReview     time.Time  `json:"nextReview"`
	LastReview     *time.Time `json:"lastReview"`
	TotalReviews   int        `json:"totalReviews"`
	CorrectAnswers int        `json:"correctAnswers"`
	Streak         int        `json:"streak"` // consecutive correct, per item
	SchemaVersion  int        `json:"schemaVersion"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// LegacyReviewRecord is the schema-version-1 layout, read-only input to
// migration. Dates are ISO strings and the direction is implicit.
type LegacyReviewRecord struct {
	WordID          string  `json:"wordId"`
	EasinessFactor  float64 `json:"easinessFactor"`
	Interval        int     `json:"interval"`
	Repetitions     int     `json:"repetitions"`
	NextReviewDate  string  `json:"nextReviewDate"`
	LastReviewDate  string  `json:"lastReviewDate"`
	TotalReviews    int     `json:"totalReviews"`
	CorrectAnswers  int     `json:"correctAnswers"`
	Streak          int     `json:"streak"`
	Created         string  `json:"created"`
}

// SRSStats is an aggregate over the review records of one direction.
type SRSStats struct {
	Total         int       `json:"total"`
	Due           int       `json:"due"`
	AvgEaseFactor float64   `json:"avg_ease_factor"`
	AvgAccuracy   float64   `json:"avg_accuracy"` // percent, items with reviews only
	Direction     Direction `json:"direction"`
}
