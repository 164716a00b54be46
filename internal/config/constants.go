// internal/config/constants.go
package config

const (
	DefaultServerPort     = "8080"
	DefaultDatabasePath   = "trainer.db"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultSessionSize    = 20
	DefaultDailyXPTarget  = 50
	DefaultXPPerReview    = 10
	DefaultHistoryLimit   = 50
	DefaultVocabularyPath = "configs/vocabulary.json"
)

// Persisted key layout. Review records are keyed per item and direction,
// legacy records per item only.
const (
	ReviewKeyPrefix       = "review_"
	LegacyReviewKeyPrefix = "review:"
	LedgerKey             = "learning-session"
	SessionHistoryKey     = "session_history"
	PracticeStatsKey      = "practice_stats"
)
