//go:generate mockery --name KVStore --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the flat key-value table every engine component
// persists through. Values are JSON documents owned by the caller.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// KVStore is the persistence boundary of the engine. Callers pass the
// *gorm.DB (or transaction handle) explicitly so services control
// transaction scope.
type KVStore interface {
	Get(ctx context.Context, db *gorm.DB, key string) (string, error)
	Put(ctx context.Context, tx *gorm.DB, key, value string) error
	Delete(ctx context.Context, tx *gorm.DB, key string) error
	ListByPrefix(ctx context.Context, db *gorm.DB, prefix string) (map[string]string, error)
	DeleteByPrefix(ctx context.Context, tx *gorm.DB, prefix string) (int64, error)
}

// escapeLike neutralizes LIKE metacharacters so prefixes such as "review_"
// match literally instead of treating "_" as a wildcard.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type gormKVStore struct{}

func NewGormKVStore() KVStore {
	return &gormKVStore{}
}

func (r *gormKVStore) Get(ctx context.Context, db *gorm.DB, key string) (string, error) {
	logger := middleware.GetLogger(ctx)
	var entry KVEntry
	result := db.WithContext(ctx).Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", model.ErrNotFound
		}
		logger.Error("Error reading key from DB",
			"error", result.Error,
			"key", key,
		)
		return "", fmt.Errorf("gormKVStore.Get: %w", errors.Join(model.ErrPersistence, result.Error))
	}
	return entry.Value, nil
}

func (r *gormKVStore) Put(ctx context.Context, tx *gorm.DB, key, value string) error {
	logger := middleware.GetLogger(ctx)
	entry := KVEntry{Key: key, Value: value}
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&entry)
	if result.Error != nil {
		logger.Error("Error writing key to DB",
			"error", result.Error,
			"key", key,
		)
		return fmt.Errorf("gormKVStore.Put: %w", errors.Join(model.ErrPersistence, result.Error))
	}
	return nil
}

func (r *gormKVStore) Delete(ctx context.Context, tx *gorm.DB, key string) error {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("key = ?", key).Delete(&KVEntry{})
	if result.Error != nil {
		logger.Error("Error deleting key from DB",
			"error", result.Error,
			"key", key,
		)
		return fmt.Errorf("gormKVStore.Delete: %w", errors.Join(model.ErrPersistence, result.Error))
	}
	return nil
}

func (r *gormKVStore) ListByPrefix(ctx context.Context, db *gorm.DB, prefix string) (map[string]string, error) {
	logger := middleware.GetLogger(ctx)
	var entries []KVEntry
	result := db.WithContext(ctx).Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").Order("key ASC").Find(&entries)
	if result.Error != nil {
		logger.Error("Error listing keys from DB",
			"error", result.Error,
			"prefix", prefix,
		)
		return nil, fmt.Errorf("gormKVStore.ListByPrefix: %w", errors.Join(model.ErrPersistence, result.Error))
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func (r *gormKVStore) DeleteByPrefix(ctx context.Context, tx *gorm.DB, prefix string) (int64, error) {
	logger := middleware.GetLogger(ctx)
	result := tx.WithContext(ctx).Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").Delete(&KVEntry{})
	if result.Error != nil {
		logger.Error("Error deleting keys from DB",
			"error", result.Error,
			"prefix", prefix,
		)
		return 0, fmt.Errorf("gormKVStore.DeleteByPrefix: %w", errors.Join(model.ErrPersistence, result.Error))
	}
	return result.RowsAffected, nil
}
