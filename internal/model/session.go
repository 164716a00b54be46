// internal/model/session.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// GradeLogEntry records one grading action inside a session.
type GradeLogEntry struct {
	ItemID  string    `json:"item_id"`
	Quality int       `json:"quality"`
	At      time.Time `json:"at"`
}

// SessionSummary is emitted when a session reaches Complete (or is ended
// early) and is what gets appended to the session history.
type SessionSummary struct {
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	CardsStudied    int       `json:"cardsStudied"`
	CorrectCount    int       `json:"correctCount"`
	IncorrectCount  int       `json:"incorrectCount"`
	AverageGrade    float64   `json:"averageGrade"`
	AccuracyPercent float64   `json:"accuracy"`
	DurationMs      int64     `json:"durationMs"`
}

// Practice session API DTOs.

type StartSessionRequest struct {
	Direction string `json:"direction" validate:"required,oneof=de-bg bg-de"`
	Size      int    `json:"size" validate:"omitempty,min=1,max=100"`
}

type GradeRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// SessionResponse is the session view returned by every session endpoint.
// Back is only populated once the card has been flipped.
type SessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	Direction Direction       `json:"direction"`
	State     string          `json:"state"` // "presenting" | "complete"
	Position  int             `json:"position"`
	Total     int             `json:"total"`
	IsFlipped bool            `json:"is_flipped"`
	Card      *Card           `json:"card,omitempty"`
	Summary   *SessionSummary `json:"summary,omitempty"`
}
