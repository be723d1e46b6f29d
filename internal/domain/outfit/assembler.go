package outfit

import "log/slog"

var accessoryOrder = []Category{CategoryShoes, CategoryHat, CategoryScarf, CategoryAccessory}

// PrimaryPolicy settles the TOP versus DRESS slot; either argument may be nil.
type PrimaryPolicy func(top, dress *Pick) *Pick

// HigherWins keeps the better scoring primary and prefers TOP on a tie.
func HigherWins(top, dress *Pick) *Pick {
	switch {
	case top == nil:
		return dress
	case dress == nil:
		return top
	case dress.Score.Total > top.Score.Total:
		return dress
	default:
		return top
	}
}

// CoinFlipWithin flips a coin when both primaries are within NearBestDelta.
func CoinFlipWithin(rnd Randomizer) PrimaryPolicy {
	return func(top, dress *Pick) *Pick {
		if top == nil || dress == nil {
			return HigherWins(top, dress)
		}
		diff := top.Score.Total - dress.Score.Total
		if diff < 0 {
			diff = -diff
		}
		if diff <= NearBestDelta {
			if rnd.Intn(2) == 0 {
				return top
			}
			return dress
		}
		return HigherWins(top, dress)
	}
}

// assembler orchestrates category selection for the scoring strategies.
type assembler struct {
	selector Selector
	floors   Floors
	primary  PrimaryPolicy
	logger   *slog.Logger
}

func (a assembler) assemble(cond Conditions, wardrobe Wardrobe) []Pick {
	scorer := NewScorer(cond)

	var outer *Pick
	if cond.OuterNeeded {
		outer = a.pick(scorer, wardrobe, CategoryOuter, nil)
		if outer == nil {
			a.logger.Debug("outer needed but none qualified, continuing without outer")
		}
	}

	var anchor *Garment
	if outer != nil {
		anchor = &outer.Garment
	}

	top := a.pick(scorer, wardrobe, CategoryTop, anchor)
	dress := a.pick(scorer, wardrobe, CategoryDress, anchor)
	primary := a.primary(top, dress)

	var bottom *Pick
	if primary != nil && primary.Garment.Category == CategoryTop {
		bottom = a.pick(scorer, wardrobe, CategoryBottom, anchor)
	}

	accessoryAnchor := anchor
	if outer == nil && primary != nil {
		accessoryAnchor = &primary.Garment
	}

	out := make([]Pick, 0, 3+len(accessoryOrder))
	for _, p := range []*Pick{outer, primary, bottom} {
		if p != nil {
			out = append(out, *p)
		}
	}
	for _, category := range accessoryOrder {
		if p := a.pick(scorer, wardrobe, category, accessoryAnchor); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (a assembler) pick(scorer Scorer, wardrobe Wardrobe, category Category, anchor *Garment) *Pick {
	candidates := wardrobe.ByCategory(category)
	if len(candidates) == 0 {
		return nil
	}
	p, ok := a.selector.Select(scorer, candidates, anchor, a.floors.For(category))
	if !ok {
		a.logger.Debug("no candidate cleared floor", "category", category, "candidates", len(candidates), "floor", a.floors.For(category))
		return nil
	}
	a.logger.Debug("category selected", "category", category, "garment_id", p.Garment.ID, "score", p.Score.Total)
	return &p
}

func garmentsOf(picks []Pick) []Garment {
	out := make([]Garment, 0, len(picks))
	for _, p := range picks {
		out = append(out, p.Garment)
	}
	return out
}
