package profilerepo

import (
	"context"
	"sync"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
)

// MemoryRepository provides an in-memory profile store for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int64]outfit.UserProfile
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[int64]outfit.UserProfile)}
}

// Upsert stores or replaces the profile.
func (r *MemoryRepository) Upsert(_ context.Context, profile outfit.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}

// GetProfile implements outfit.ProfileRepository.
func (r *MemoryRepository) GetProfile(_ context.Context, userID int64) (outfit.UserProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	return profile, ok, nil
}

var _ outfit.ProfileRepository = (*MemoryRepository)(nil)
