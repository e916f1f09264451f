package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/fropcore/bmiwidget/internal/cache"
)

// RateStore counts hits per key in fixed windows.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

type rateWindow struct {
	hits int
	ends time.Time
}

// memoryRateStore keeps windows in process memory. Lapsed windows are swept
// at most once per window length, during Increment.
type memoryRateStore struct {
	mu        sync.Mutex
	data      map[string]*rateWindow
	clock     func() time.Time
	nextSweep time.Time
}

// NewMemoryRateStore returns a store local to this process. Limits are not
// shared between instances.
func NewMemoryRateStore() RateStore {
	return newMemoryRateStore(time.Now)
}

func newMemoryRateStore(clock func() time.Time) *memoryRateStore {
	return &memoryRateStore{data: map[string]*rateWindow{}, clock: clock}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now, window)

	w := s.data[key]
	if w == nil || now.After(w.ends) {
		w = &rateWindow{ends: now.Add(window)}
		s.data[key] = w
	}
	w.hits++
	return w.hits, w.ends.Sub(now), nil
}

func (s *memoryRateStore) sweep(now time.Time, window time.Duration) {
	if now.Before(s.nextSweep) {
		return
	}
	for key, w := range s.data {
		if now.After(w.ends) {
			delete(s.data, key)
		}
	}
	s.nextSweep = now.Add(window)
}

type cacheRateStore struct {
	store cache.Store
}

// NewDatabaseRateStore counts through a cache.Store, normally the database
// one, so limits hold across every instance sharing it. Returns nil for a nil
// store, which RateLimit replaces with the memory store.
func NewDatabaseRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return cacheRateStore{store: store}
}

func (s cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
