package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fropcore/bmiwidget/internal/models"
)

// ErrNoStore is returned by every method of a nil *DatabaseStore.
var ErrNoStore = errors.New("cache: database store not initialised")

const defaultWindow = time.Minute

// keyColumn goes through clause builders so it is quoted; "key" is reserved
// in MySQL.
var keyColumn = clause.Column{Name: "key"}

func byKey(key string) clause.Expression {
	return clause.Eq{Column: keyColumn, Value: key}
}

// DatabaseStore keeps cache entries in the cache_entries table, so every
// instance sharing the database shares counters. A zero ExpiresAt marks an
// entry that never expires.
type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDatabaseStore returns nil for a nil db.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, now: time.Now}
}

func (s *DatabaseStore) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoStore
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx), nil
}

// IncrementWithTTL bumps the counter at key and returns the new count and the
// time left in its window. The window opens on the first hit and later hits
// do not extend it; once it lapses the count restarts at 1.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, 0, err
	}
	if window <= 0 {
		window = defaultWindow
	}

	now := s.now()
	var entry models.CacheEntry
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(byKey(key)).Take(&entry).Error
		found := err == nil
		if !found && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if !found {
			entry = models.CacheEntry{Key: key}
		}
		var count int64
		if found && entry.ExpiresAt.After(now) {
			count, _ = strconv.ParseInt(string(entry.Value), 10, 64)
		} else {
			entry.ExpiresAt = now.Add(window)
		}
		entry.Value = strconv.AppendInt(nil, count+1, 10)

		if found {
			return tx.Save(&entry).Error
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return 0, 0, err
	}

	count, _ := strconv.ParseInt(string(entry.Value), 10, 64)
	return count, entry.ExpiresAt.Sub(now), nil
}

// Set upserts value at key. A non-positive ttl stores it without expiry.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	entry := models.CacheEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{keyColumn},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

// Get returns the live value at key. Expired entries are deleted on read and
// reported as missing.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var entry models.CacheEntry
	switch err := db.Where(byKey(key)).Take(&entry).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	if s.expired(entry) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return entry.Value, true, nil
}

func (s *DatabaseStore) expired(entry models.CacheEntry) bool {
	return !entry.ExpiresAt.IsZero() && s.now().After(entry.ExpiresAt)
}

// Delete removes keys. Missing keys are not an error.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	db, err := s.conn(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}

	values := make([]any, 0, len(keys))
	for _, key := range keys {
		values = append(values, key)
	}
	return db.Where(clause.IN{Column: keyColumn, Values: values}).Delete(&models.CacheEntry{}).Error
}

// DeleteExpired purges lapsed entries, leaving permanent ones, and reports how
// many rows went.
func (s *DatabaseStore) DeleteExpired(ctx context.Context) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Where("expires_at > ? AND expires_at < ?", time.Time{}, s.now()).Delete(&models.CacheEntry{})
	return res.RowsAffected, res.Error
}
