package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/model"
	"bgde_trainer/internal/progress"
	"bgde_trainer/internal/repository"
	"bgde_trainer/internal/saga"
	"bgde_trainer/internal/session"
	"bgde_trainer/internal/srs"
	"bgde_trainer/internal/vocab"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeService drives practice sessions end to end: queue building,
// card presentation, grading with scheduling and progress updates, and the
// session history.
type PracticeService interface {
	StartSession(ctx context.Context, direction model.Direction, size int) (*model.SessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error)
	Flip(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error)
	Grade(ctx context.Context, id uuid.UUID, quality int) (*model.SessionResponse, error)
	Skip(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error)
	End(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error)
	History(ctx context.Context) ([]model.SessionSummary, error)
}

type practiceService struct {
	db        *gorm.DB
	kv        repository.KVStore
	store     *srs.Store
	ledger    *progress.Ledger
	catalogue vocab.Catalogue
	cfg       *config.Config

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Controller
}

func NewPracticeService(db *gorm.DB, kv repository.KVStore, store *srs.Store, ledger *progress.Ledger, catalogue vocab.Catalogue, cfg *config.Config) PracticeService {
	return &practiceService{
		db:        db,
		kv:        kv,
		store:     store,
		ledger:    ledger,
		catalogue: catalogue,
		cfg:       cfg,
		sessions:  make(map[uuid.UUID]*session.Controller),
	}
}

func (s *practiceService) StartSession(ctx context.Context, direction model.Direction, size int) (*model.SessionResponse, error) {
	logger := middleware.GetLogger(ctx).With("direction", string(direction))
	now := time.Now()

	if size <= 0 {
		size = s.cfg.App.SessionSize
	}

	due, err := s.store.ListDue(ctx, s.db, direction, now)
	if err != nil {
		logger.Error("Failed to list due records", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not load review schedule.", "", err)
	}
	tracked, err := s.store.ListAll(ctx, s.db, direction)
	if err != nil {
		logger.Error("Failed to list review records", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not load review schedule.", "", err)
	}

	queue := session.BuildQueue(s.catalogue.Candidates(direction), due, tracked, size)
	if len(queue) == 0 {
		return nil, model.NewAppError("EMPTY_QUEUE", "No cards are available for practice right now.", "", model.ErrEmptyQueue)
	}

	ctrl, err := session.NewController(direction, queue, now)
	if err != nil {
		return nil, model.NewAppError("EMPTY_QUEUE", "No cards are available for practice right now.", "", err)
	}

	s.mu.Lock()
	s.sessions[ctrl.ID()] = ctrl
	s.mu.Unlock()

	logger.Info("Practice session started",
		"session_id", ctrl.ID().String(),
		"cards", len(queue),
		"due", len(due),
	)
	return s.toResponse(ctrl), nil
}

func (s *practiceService) GetSession(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toResponse(ctrl), nil
}

func (s *practiceService) Flip(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctrl.Flip(); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "The card is already revealed.", "", err)
	}
	return s.toResponse(ctrl), nil
}

// Grade runs the full atomic update for one answer: SM-2 scheduling, XP,
// streak and per-item stats, all persisted in a single transaction. When
// any part fails, the in-memory state is rewound and the session stays on
// the current card so the grade can be retried.
func (s *practiceService) Grade(ctx context.Context, id uuid.UUID, quality int) (*model.SessionResponse, error) {
	logger := middleware.GetLogger(ctx).With("session_id", id.String(), "quality", quality)

	ctrl, err := s.controller(id)
	if err != nil {
		return nil, err
	}

	if err := srs.ValidateQuality(quality); err != nil {
		return nil, model.NewAppError("INVALID_GRADE", "Grade must be between 0 and 5.", "quality", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctrl.CanGrade(); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "Reveal the card before grading it.", "", err)
	}
	card := ctrl.CurrentCard()
	now := time.Now()

	rec, err := s.store.GetOrCreate(ctx, s.db, card.ItemID, ctrl.Direction(), now)
	if err != nil {
		logger.Error("Failed to load review record", "error", err, "item_id", card.ItemID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not load the review record.", "", err)
	}
	if err := srs.Grade(rec, quality, now); err != nil {
		return nil, model.NewAppError("INVALID_GRADE", "Grade must be between 0 and 5.", "quality", err)
	}
	correct := quality >= srs.PassingQuality

	var checkpoint progress.State
	steps := []saga.Step{
		{
			Name: "progress",
			Apply: func(context.Context) error {
				checkpoint = s.ledger.Capture()
				// AwardXP is the only call here that can fail; it goes first
				// so the step never leaves a partial ledger mutation behind.
				if err := s.ledger.AwardXP(s.cfg.App.XPPerReview); err != nil {
					s.ledger.Restore(checkpoint)
					return err
				}
				s.ledger.ApplyReview(card.ItemID, correct, now)
				s.ledger.RecordPracticeDay(now)
				return nil
			},
			Rollback: func(context.Context) {
				s.ledger.Restore(checkpoint)
			},
		},
		{
			Name: "persist",
			Apply: func(sctx context.Context) error {
				return s.db.WithContext(sctx).Transaction(func(tx *gorm.DB) error {
					if err := s.store.Save(sctx, tx, rec); err != nil {
						return err
					}
					return s.ledger.Persist(sctx, tx)
				})
			},
			// The database transaction undoes itself; only the in-memory
			// ledger step needs an explicit rollback.
		},
	}

	if err := saga.Run(ctx, steps); err != nil {
		logger.Error("Grade update failed, state rolled back", "error", err, "item_id", card.ItemID)
		return nil, model.NewAppError("PERSISTENCE_ERROR", "The answer could not be saved. Please try again.", "", errors.Join(model.ErrPersistence, err))
	}

	if err := ctrl.RecordGrade(quality, now); err != nil {
		// CanGrade passed and the quality is validated, so this is a bug.
		logger.Error("Grade recorded durably but session refused it", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Session state error.", "", err)
	}

	logger.Info("Card graded",
		"item_id", card.ItemID,
		"correct", correct,
		"interval_days", rec.Interval,
	)

	if ctrl.Phase() == session.PhaseComplete {
		s.archiveSession(ctx, ctrl)
	}
	return s.toResponse(ctrl), nil
}

func (s *practiceService) Skip(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctrl.Skip(time.Now()); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "The session is already complete.", "", err)
	}
	if ctrl.Phase() == session.PhaseComplete {
		s.archiveSession(ctx, ctrl)
	}
	return s.toResponse(ctrl), nil
}

func (s *practiceService) End(ctx context.Context, id uuid.UUID) (*model.SessionResponse, error) {
	ctrl, err := s.controller(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctrl.End(time.Now()); err != nil {
		return nil, model.NewAppError("INVALID_STATE", "The session is already complete.", "", err)
	}
	s.archiveSession(ctx, ctrl)
	return s.toResponse(ctrl), nil
}

func (s *practiceService) History(ctx context.Context) ([]model.SessionSummary, error) {
	logger := middleware.GetLogger(ctx)

	raw, err := s.kv.Get(ctx, s.db, config.SessionHistoryKey)
	if errors.Is(err, model.ErrNotFound) {
		return []model.SessionSummary{}, nil
	}
	if err != nil {
		logger.Error("Failed to read session history", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not load the session history.", "", err)
	}

	var history []model.SessionSummary
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logger.Warn("Stored session history unreadable", "error", err)
		return []model.SessionSummary{}, nil
	}
	return history, nil
}

func (s *practiceService) controller(id uuid.UUID) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[id]
	if !ok {
		return nil, model.NewAppError("NOT_FOUND", "Practice session not found.", "", fmt.Errorf("session %s: %w", id, model.ErrNotFound))
	}
	return ctrl, nil
}

// archiveSession appends the summary to the capped history list. A write
// failure here only costs the history entry, never the graded progress, so
// it is logged and swallowed. Caller holds s.mu.
func (s *practiceService) archiveSession(ctx context.Context, ctrl *session.Controller) {
	logger := middleware.GetLogger(ctx).With("session_id", ctrl.ID().String())

	history, err := s.History(ctx)
	if err != nil {
		logger.Warn("Skipping history append, history unreadable", "error", err)
		return
	}

	history = append(history, ctrl.Summary())
	if limit := s.cfg.App.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	raw, err := json.Marshal(history)
	if err != nil {
		logger.Warn("Skipping history append, encoding failed", "error", err)
		return
	}
	if err := s.kv.Put(ctx, s.db, config.SessionHistoryKey, string(raw)); err != nil {
		logger.Warn("Failed to persist session history", "error", err)
	}
}

// Caller holds s.mu.
func (s *practiceService) toResponse(ctrl *session.Controller) *model.SessionResponse {
	resp := &model.SessionResponse{
		SessionID: ctrl.ID(),
		Direction: ctrl.Direction(),
		State:     string(ctrl.Phase()),
		Position:  ctrl.Position(),
		Total:     ctrl.Total(),
		IsFlipped: ctrl.IsFlipped(),
	}
	if card := ctrl.CurrentCard(); card != nil {
		view := *card
		if !ctrl.IsFlipped() {
			view.Back = ""
			view.Notes = ""
		}
		resp.Card = &view
	}
	if ctrl.Phase() == session.PhaseComplete {
		summary := ctrl.Summary()
		resp.Summary = &summary
	}
	return resp
}
