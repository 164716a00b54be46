package service

import (
	"context"
	"time"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/model"
	"bgde_trainer/internal/progress"
	"bgde_trainer/internal/srs"

	"gorm.io/gorm"
)

// ProgressService exposes the learner's progress: XP and streak summary,
// scheduling statistics, weak items and the reset operations.
type ProgressService interface {
	Summary(ctx context.Context) (*model.ProgressSummary, error)
	SRSStats(ctx context.Context, direction model.Direction) (*model.SRSStats, error)
	WeakItems(ctx context.Context, limit int) ([]model.WeakItem, error)
	ResetProgress(ctx context.Context) error
	ClearReviews(ctx context.Context) (int64, error)
}

type progressService struct {
	db     *gorm.DB
	store  *srs.Store
	ledger *progress.Ledger
	cfg    *config.Config
}

func NewProgressService(db *gorm.DB, store *srs.Store, ledger *progress.Ledger, cfg *config.Config) ProgressService {
	return &progressService{
		db:     db,
		store:  store,
		ledger: ledger,
		cfg:    cfg,
	}
}

func (s *progressService) Summary(ctx context.Context) (*model.ProgressSummary, error) {
	sum := s.ledger.Summary(s.cfg.App.DailyXPTarget)
	return &sum, nil
}

func (s *progressService) SRSStats(ctx context.Context, direction model.Direction) (*model.SRSStats, error) {
	logger := middleware.GetLogger(ctx).With("direction", string(direction))

	stats, err := s.store.Stats(ctx, s.db, direction, time.Now())
	if err != nil {
		logger.Error("Failed to aggregate review stats", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "Could not load review statistics.", "", err)
	}
	return stats, nil
}

func (s *progressService) WeakItems(ctx context.Context, limit int) ([]model.WeakItem, error) {
	return s.ledger.WeakItems(limit), nil
}

// ResetProgress zeroes XP, streak and practice stats. Review scheduling is
// untouched; ClearReviews handles that side.
func (s *progressService) ResetProgress(ctx context.Context) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.ledger.Reset(ctx, tx)
	})
	if err != nil {
		logger.Error("Failed to reset progress", "error", err)
		return model.NewAppError("PERSISTENCE_ERROR", "Could not reset progress.", "", err)
	}

	logger.Info("Progress ledger reset")
	return nil
}

// ClearReviews wipes all scheduling records, both directions, including
// legacy entries that would otherwise re-migrate on the next access.
func (s *progressService) ClearReviews(ctx context.Context) (int64, error) {
	logger := middleware.GetLogger(ctx)

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, cerr := s.store.ClearAll(ctx, tx)
		removed = n
		return cerr
	})
	if err != nil {
		logger.Error("Failed to clear review records", "error", err)
		return 0, model.NewAppError("PERSISTENCE_ERROR", "Could not clear review records.", "", err)
	}

	logger.Info("Review records cleared", "removed", removed)
	return removed, nil
}
