package wardroberepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ootd-recommender/internal/domain/outfit"
)

// MemoryRepository keeps wardrobes in process memory for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	owners map[int64]outfit.Wardrobe
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{owners: make(map[int64]outfit.Wardrobe)}
}

// Add appends garments to the owner's wardrobe, assigning ids when missing.
func (r *MemoryRepository) Add(_ context.Context, ownerID int64, garments ...outfit.Garment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range garments {
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		g.Attributes = append([]outfit.Attribute(nil), g.Attributes...)
		r.owners[ownerID] = append(r.owners[ownerID], g)
	}
	return nil
}

// ListByOwner implements outfit.WardrobeRepository.
func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID int64) (outfit.Wardrobe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.owners[ownerID]
	out := make(outfit.Wardrobe, len(stored))
	copy(out, stored)
	return out, nil
}

var _ outfit.WardrobeRepository = (*MemoryRepository)(nil)
