package weatherstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
	"github.com/yanqian/ootd-recommender/pkg/util"
)

type snapshot struct {
	payload   outfit.Weather
	expiresAt time.Time
}

// MemoryStore keeps the latest snapshot per region in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	regions map[string]snapshot
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regions: make(map[string]snapshot), now: util.NowUTC}
}

// Latest implements outfit.WeatherStore.
func (s *MemoryStore) Latest(_ context.Context, region string) (outfit.Weather, bool, error) {
	s.mu.RLock()
	record, ok := s.regions[region]
	s.mu.RUnlock()
	if !ok {
		return outfit.Weather{}, false, nil
	}
	if s.expired(record) {
		s.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if current, ok := s.regions[region]; ok && s.expired(current) {
			delete(s.regions, region)
		}
		s.mu.Unlock()
		return outfit.Weather{}, false, nil
	}
	return record.payload, true, nil
}

func (s *MemoryStore) expired(record snapshot) bool {
	return !record.expiresAt.IsZero() && s.now().After(record.expiresAt)
}

// Save replaces the region's snapshot with optional TTL.
func (s *MemoryStore) Save(_ context.Context, region string, weather outfit.Weather, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.regions[region] = snapshot{payload: weather, expiresAt: exp}
	return nil
}

var _ outfit.WeatherStore = (*MemoryStore)(nil)
