package outfit

import (
	"math/rand"
	"time"
)

// NearBestDelta is the score window that still counts as "as good as the best".
const NearBestDelta = 2

// Randomizer is the subset of *rand.Rand the strategies depend on.
type Randomizer interface {
	Intn(n int) int
}

// RandFactory yields a fresh random source for a single call.
type RandFactory func() Randomizer

// DefaultRandFactory seeds a new source from the clock on every call.
func DefaultRandFactory() Randomizer {
	return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // outfit variety, not security
}

// Floors holds the minimum total score per category group.
type Floors struct {
	Primary int
	Bottom  int
	Outer   int
	Misc    int
}

// For returns the floor for a category.
func (f Floors) For(category Category) int {
	switch category {
	case CategoryTop, CategoryDress:
		return f.Primary
	case CategoryBottom:
		return f.Bottom
	case CategoryOuter:
		return f.Outer
	default:
		return f.Misc
	}
}

var (
	// FloorBestFloors are used by the rule based strategy.
	FloorBestFloors = Floors{Primary: 2, Bottom: 1, Outer: 1, Misc: 0}
	// DiversifiedFloors are used by the score based strategy.
	DiversifiedFloors = Floors{Primary: 2, Bottom: 1, Outer: 2, Misc: 2}
)

// Pick is a chosen garment together with the score that qualified it.
type Pick struct {
	Garment Garment
	Score   Score
}

// Selector chooses at most one garment out of a category's candidates.
type Selector interface {
	Select(scorer Scorer, candidates []Garment, anchor *Garment, floor int) (Pick, bool)
}

// FloorBest returns the single best candidate if it clears the floor.
type FloorBest struct{}

// Select implements Selector. Ties keep the earliest candidate.
func (FloorBest) Select(scorer Scorer, candidates []Garment, anchor *Garment, floor int) (Pick, bool) {
	var (
		best  Pick
		found bool
	)
	for _, g := range candidates {
		score := scorer.Score(g, anchor)
		if !found || score.Total > best.Score.Total {
			best = Pick{Garment: g, Score: score}
			found = true
		}
	}
	if !found || best.Score.Total < floor {
		return Pick{}, false
	}
	return best, true
}

// DiversifiedNearBest draws uniformly among the candidates close to the best score.
type DiversifiedNearBest struct {
	Rand Randomizer
}

// Select implements Selector.
func (d DiversifiedNearBest) Select(scorer Scorer, candidates []Garment, anchor *Garment, floor int) (Pick, bool) {
	survivors := make([]Pick, 0, len(candidates))
	bestTotal := 0
	for _, g := range candidates {
		score := scorer.Score(g, anchor)
		if score.Total < floor {
			continue
		}
		if len(survivors) == 0 || score.Total > bestTotal {
			bestTotal = score.Total
		}
		survivors = append(survivors, Pick{Garment: g, Score: score})
	}
	if len(survivors) == 0 {
		return Pick{}, false
	}

	pool := make([]Pick, 0, len(survivors))
	for _, p := range survivors {
		if bestTotal-p.Score.Total <= NearBestDelta {
			pool = append(pool, p)
		}
	}
	return pool[d.Rand.Intn(len(pool))], true
}
