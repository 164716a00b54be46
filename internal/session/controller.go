// internal/session/controller.go
package session

import (
	"fmt"
	"time"

	"bgde_trainer/internal/model"

	"github.com/google/uuid"
)

// Phase is the controller state. A session starts in Presenting (the queue
// is never empty) and only ever moves forward to Complete.
type Phase string

const (
	PhasePresenting Phase = "presenting"
	PhaseComplete   Phase = "complete"
)

// Controller runs one practice session over a fixed card queue. It owns
// presentation state only; scheduling and persistence happen outside.
// Methods are not safe for concurrent use; the owning service serializes
// access.
type Controller struct {
	id        uuid.UUID
	direction model.Direction
	queue     []model.Card
	phase     Phase
	pos       int
	flipped   bool

	startedAt time.Time
	endedAt   time.Time
	gradeLog  []model.GradeLogEntry
	correct   int
	incorrect int
	gradeSum  int
}

// NewController starts a session over the given cards.
func NewController(direction model.Direction, queue []model.Card, now time.Time) (*Controller, error) {
	if len(queue) == 0 {
		return nil, fmt.Errorf("session.NewController: %w", model.ErrEmptyQueue)
	}
	return &Controller{
		id:        uuid.New(),
		direction: direction,
		queue:     queue,
		phase:     PhasePresenting,
		startedAt: now,
	}, nil
}

func (c *Controller) ID() uuid.UUID              { return c.id }
func (c *Controller) Direction() model.Direction { return c.direction }
func (c *Controller) Phase() Phase               { return c.phase }
func (c *Controller) Position() int              { return c.pos }
func (c *Controller) Total() int                 { return len(c.queue) }
func (c *Controller) IsFlipped() bool            { return c.flipped }

// CurrentCard returns the card being presented, or nil once complete.
func (c *Controller) CurrentCard() *model.Card {
	if c.phase != PhasePresenting {
		return nil
	}
	card := c.queue[c.pos]
	return &card
}

// Flip reveals the back of the current card. Flipping an already revealed
// card is rejected; there is no way to hide the back again.
func (c *Controller) Flip() error {
	if c.phase != PhasePresenting {
		return fmt.Errorf("session.Flip: session is %s: %w", c.phase, model.ErrInvalidState)
	}
	if c.flipped {
		return fmt.Errorf("session.Flip: card already revealed: %w", model.ErrInvalidState)
	}
	c.flipped = true
	return nil
}

// CanGrade reports whether RecordGrade would be a legal transition. The
// owning service checks this before running side effects, so a failure
// there leaves the controller (card still revealed) untouched.
func (c *Controller) CanGrade() error {
	if c.phase != PhasePresenting {
		return fmt.Errorf("session.CanGrade: session is %s: %w", c.phase, model.ErrInvalidState)
	}
	if !c.flipped {
		return fmt.Errorf("session.CanGrade: card not revealed: %w", model.ErrInvalidState)
	}
	return nil
}

// RecordGrade logs the grade for the current card and advances the queue.
func (c *Controller) RecordGrade(quality int, now time.Time) error {
	if err := c.CanGrade(); err != nil {
		return err
	}
	if quality < 0 || quality > 5 {
		return fmt.Errorf("session.RecordGrade: quality %d: %w", quality, model.ErrInvalidGrade)
	}

	c.gradeLog = append(c.gradeLog, model.GradeLogEntry{
		ItemID:  c.queue[c.pos].ItemID,
		Quality: quality,
		At:      now,
	})
	c.gradeSum += quality
	if quality >= 3 {
		c.correct++
	} else {
		c.incorrect++
	}
	c.advance(now)
	return nil
}

// Skip moves past the current card without grading it. The card needs no
// reveal first and leaves no trace in the grade log.
func (c *Controller) Skip(now time.Time) error {
	if c.phase != PhasePresenting {
		return fmt.Errorf("session.Skip: session is %s: %w", c.phase, model.ErrInvalidState)
	}
	c.advance(now)
	return nil
}

// End finishes the session early. Ending a completed session is invalid.
func (c *Controller) End(now time.Time) error {
	if c.phase != PhasePresenting {
		return fmt.Errorf("session.End: session is %s: %w", c.phase, model.ErrInvalidState)
	}
	c.complete(now)
	return nil
}

func (c *Controller) advance(now time.Time) {
	c.flipped = false
	c.pos++
	if c.pos >= len(c.queue) {
		c.complete(now)
	}
}

func (c *Controller) complete(now time.Time) {
	c.phase = PhaseComplete
	c.endedAt = now
}

// GradeLog returns the grading actions recorded so far, oldest first.
func (c *Controller) GradeLog() []model.GradeLogEntry {
	out := make([]model.GradeLogEntry, len(c.gradeLog))
	copy(out, c.gradeLog)
	return out
}

// Summary derives the session result. Before completion it reflects the
// progress so far with a zero EndedAt.
func (c *Controller) Summary() model.SessionSummary {
	graded := len(c.gradeLog)
	sum := model.SessionSummary{
		StartedAt:      c.startedAt,
		EndedAt:        c.endedAt,
		CardsStudied:   graded,
		CorrectCount:   c.correct,
		IncorrectCount: c.incorrect,
	}
	if graded > 0 {
		sum.AverageGrade = float64(c.gradeSum) / float64(graded)
		sum.AccuracyPercent = float64(c.correct) / float64(graded) * 100
	}
	if !c.endedAt.IsZero() {
		sum.DurationMs = c.endedAt.Sub(c.startedAt).Milliseconds()
	}
	return sum
}
