package outfit

import (
	"context"
	"log/slog"
)

// Strategy names a recommendation engine.
type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategyRule   Strategy = "rule"
	StrategyScore  Strategy = "score"
	StrategyLLM    Strategy = "llm"
)

// Engine turns a profile, a weather snapshot and a wardrobe into an ordered outfit.
// An empty or partial outfit is a normal result, never an error.
type Engine interface {
	Strategy() Strategy
	Recommend(ctx context.Context, user UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, error)
}

const randomOuterMaxTemp = 25.0

// RandomEngine draws one garment per category without scoring.
type RandomEngine struct {
	newRand RandFactory
}

// NewRandomEngine builds the last resort strategy.
func NewRandomEngine(newRand RandFactory) *RandomEngine {
	if newRand == nil {
		newRand = DefaultRandFactory
	}
	return &RandomEngine{newRand: newRand}
}

func (e *RandomEngine) Strategy() Strategy { return StrategyRandom }

func (e *RandomEngine) Recommend(_ context.Context, _ UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, error) {
	rnd := e.newRand()
	categories := []Category{CategoryTop, CategoryBottom, CategoryShoes, CategoryAccessory}
	if weather.TemperatureCurrent <= randomOuterMaxTemp {
		categories = append([]Category{CategoryOuter}, categories...)
	}
	out := make([]Garment, 0, len(categories))
	for _, category := range categories {
		candidates := wardrobe.ByCategory(category)
		if len(candidates) == 0 {
			continue
		}
		out = append(out, candidates[rnd.Intn(len(candidates))])
	}
	return out, nil
}

// RuleBasedEngine always keeps the best scoring garment per category.
type RuleBasedEngine struct {
	logger *slog.Logger
}

// NewRuleBasedEngine builds the deterministic strategy.
func NewRuleBasedEngine(logger *slog.Logger) *RuleBasedEngine {
	return &RuleBasedEngine{logger: logger.With("component", "outfit.rule")}
}

func (e *RuleBasedEngine) Strategy() Strategy { return StrategyRule }

func (e *RuleBasedEngine) Recommend(_ context.Context, user UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, error) {
	if err := ValidateInputs(user, weather); err != nil {
		return nil, err
	}
	a := assembler{
		selector: FloorBest{},
		floors:   FloorBestFloors,
		primary:  HigherWins,
		logger:   e.logger,
	}
	return garmentsOf(a.assemble(DeriveConditions(user, weather), wardrobe)), nil
}

// ScoreBasedEngine draws among near-best garments so repeated calls vary the outfit.
type ScoreBasedEngine struct {
	newRand RandFactory
	logger  *slog.Logger
}

// NewScoreBasedEngine builds the primary production strategy.
func NewScoreBasedEngine(newRand RandFactory, logger *slog.Logger) *ScoreBasedEngine {
	if newRand == nil {
		newRand = DefaultRandFactory
	}
	return &ScoreBasedEngine{newRand: newRand, logger: logger.With("component", "outfit.score")}
}

func (e *ScoreBasedEngine) Strategy() Strategy { return StrategyScore }

func (e *ScoreBasedEngine) Recommend(_ context.Context, user UserProfile, weather Weather, wardrobe Wardrobe) ([]Garment, error) {
	if err := ValidateInputs(user, weather); err != nil {
		return nil, err
	}
	rnd := e.newRand()
	a := assembler{
		selector: DiversifiedNearBest{Rand: rnd},
		floors:   DiversifiedFloors,
		primary:  CoinFlipWithin(rnd),
		logger:   e.logger,
	}
	return garmentsOf(a.assemble(DeriveConditions(user, weather), wardrobe)), nil
}

var (
	_ Engine = (*RandomEngine)(nil)
	_ Engine = (*RuleBasedEngine)(nil)
	_ Engine = (*ScoreBasedEngine)(nil)
)
