// internal/srs/algorithm.go
package srs

import (
	"fmt"
	"math"
	"time"

	"bgde_trainer/internal/model"
)

const (
	// MinQuality and MaxQuality bound the SM-2 grade scale.
	MinQuality = 0
	MaxQuality = 5

	// PassingQuality is the lowest grade counted as a correct answer.
	PassingQuality = 3

	// MinEaseFactor is the floor below which an ease factor never drops.
	MinEaseFactor = 1.3

	// DefaultEaseFactor seeds a brand-new record.
	DefaultEaseFactor = 2.5
)

// ValidateQuality rejects grades outside the 0..5 scale.
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return fmt.Errorf("quality %d out of range [%d,%d]: %w", quality, MinQuality, MaxQuality, model.ErrInvalidGrade)
	}
	return nil
}

// NewRecord returns the default scheduling state for an item/direction pair
// that has never been graded.
func NewRecord(itemID string, direction model.Direction, now time.Time) *model.ReviewRecord {
	return &model.ReviewRecord{
		ItemID:        itemID,
		Direction:     direction,
		EaseFactor:    DefaultEaseFactor,
		Interval:      0,
		Repetitions:   0,
		NextReview:    now,
		SchemaVersion: model.ReviewSchemaVersion,
		CreatedAt:     now,
	}
}

// Grade applies one SM-2 step to the record in place.
//
// The ease factor adjustment runs on every grade, including failures, and
// is floored at MinEaseFactor. A failing grade (quality < 3) resets the
// repetition count and schedules the item for tomorrow; a passing grade
// advances the interval sequence 1, 6, round(prev * EF).
func Grade(rec *model.ReviewRecord, quality int, now time.Time) error {
	if err := ValidateQuality(quality); err != nil {
		return err
	}

	q := float64(quality)
	ef := rec.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	rec.EaseFactor = math.Max(MinEaseFactor, ef)

	if quality < PassingQuality {
		rec.Repetitions = 0
		rec.Interval = 1
	} else {
		rec.Repetitions++
		switch rec.Repetitions {
		case 1:
			rec.Interval = 1
		case 2:
			rec.Interval = 6
		default:
			rec.Interval = int(math.Round(float64(rec.Interval) * rec.EaseFactor))
		}
	}

	rec.TotalReviews++
	if quality >= PassingQuality {
		rec.CorrectAnswers++
		rec.Streak++
	} else {
		rec.Streak = 0
	}

	last := now
	rec.LastReview = &last
	rec.NextReview = now.AddDate(0, 0, rec.Interval)
	return nil
}

// IsDue reports whether the record should be offered for review at now.
func IsDue(rec *model.ReviewRecord, now time.Time) bool {
	return !rec.NextReview.After(now)
}
