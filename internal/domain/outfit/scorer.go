package outfit

import "strings"

// Sentinel attribute values.
const (
	seasonAllYear    = "전체"
	seasonFourSeason = "사계절"
	styleBasic       = "기본"
)

// Thickness vocabulary.
const (
	thicknessThin   = "얇음"
	thicknessMedium = "보통"
	thicknessThick  = "두꺼움"
)

const (
	seasonAllYearScore = 1
	seasonExactScore   = 3
	seasonWeakScore    = 2

	styleExactScore      = 5
	styleCompatibleScore = 3

	suedePenalty   = -3
	leatherPenalty = -2

	precipitationPenaltyProbability = 50
)

// weakSeasonPairs lists, per current season, garment seasons that still fit reasonably.
// The relation is asymmetric.
var weakSeasonPairs = map[Season][]Season{
	SeasonSpring: {SeasonFall, SeasonWinter},
	SeasonFall:   {SeasonSpring, SeasonSummer},
	SeasonSummer: {SeasonFall},
	SeasonWinter: {SeasonSpring},
}

var styleCompatibility = buildStyleCompatibility([][2]string{
	{"캐주얼", "스트릿"},
	{"캐주얼", "미니멀"},
	{"캐주얼", "스포티"},
	{"캐주얼", "빈티지"},
	{"캐주얼", "아메카지"},
	{"스트릿", "스포티"},
	{"스트릿", "빈티지"},
	{"미니멀", "포멀"},
	{"미니멀", "댄디"},
	{"미니멀", "페미닌"},
	{"포멀", "댄디"},
	{"포멀", "오피스"},
	{"댄디", "오피스"},
	{"러블리", "페미닌"},
	{"빈티지", "아메카지"},
	{"스포티", "고프코어"},
	{"아메카지", "고프코어"},
})

func buildStyleCompatibility(pairs [][2]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	link := func(a, b string) {
		if out[a] == nil {
			out[a] = make(map[string]struct{})
		}
		out[a][b] = struct{}{}
	}
	for _, p := range pairs {
		link(p[0], p[1])
		link(p[1], p[0])
	}
	return out
}

// thicknessRow holds the score of each thickness inside one temperature bucket.
type thicknessRow struct {
	thin, medium, thick, other int
}

func (r thicknessRow) pick(thickness string) int {
	switch thickness {
	case thicknessThin:
		return r.thin
	case thicknessMedium:
		return r.medium
	case thicknessThick:
		return r.thick
	default:
		return r.other
	}
}

// thicknessBucket applies when the bucket predicate matches; buckets are evaluated in order.
type thicknessBucket struct {
	matches func(temp float64) bool
	row     thicknessRow
}

// primaryThickness is keyed on the personal day temperature.
var primaryThickness = []thicknessBucket{
	{func(t float64) bool { return t >= 27 }, thicknessRow{5, -2, -20, -5}},
	{func(t float64) bool { return t >= 23 }, thicknessRow{4, 2, -20, -5}},
	{func(t float64) bool { return t >= 18 }, thicknessRow{2, 3, 0, 0}},
	{func(t float64) bool { return t >= 12 }, thicknessRow{-2, 4, 2, -2}},
	{func(float64) bool { return true }, thicknessRow{-10, 0, 4, -5}},
}

// outerThickness is keyed on the personal night temperature.
var outerThickness = []thicknessBucket{
	{func(t float64) bool { return t > 23 }, thicknessRow{-2, -5, -20, -20}},
	{func(t float64) bool { return t >= 18 }, thicknessRow{4, -2, -10, -10}},
	{func(t float64) bool { return t >= 14 }, thicknessRow{2, 3, -10, -10}},
	{func(t float64) bool { return t >= 10 }, thicknessRow{0, 4, -2, 0}},
	{func(float64) bool { return true }, thicknessRow{-10, 0, 4, 0}},
}

func lookupThickness(buckets []thicknessBucket, temp float64, thickness string) int {
	for _, b := range buckets {
		if b.matches(temp) {
			return b.row.pick(thickness)
		}
	}
	return 0
}

// Score is the per axis breakdown of a candidate evaluation.
type Score struct {
	Season    int `json:"season"`
	Style     int `json:"style"`
	Material  int `json:"material"`
	Thickness int `json:"thickness"`
	Total     int `json:"total"`
}

// Scorer evaluates garments against a fixed weather context.
type Scorer struct {
	cond Conditions
}

// NewScorer binds a scorer to the derived conditions of one call.
func NewScorer(cond Conditions) Scorer {
	return Scorer{cond: cond}
}

// Score rates a garment; anchor is the previously chosen garment or nil.
func (s Scorer) Score(g Garment, anchor *Garment) Score {
	season, _ := g.Attribute(AttrSeason)
	style, _ := g.Attribute(AttrStyle)
	material, _ := g.Attribute(AttrMaterial)

	var anchorStyle string
	hasAnchorStyle := false
	if anchor != nil {
		anchorStyle, hasAnchorStyle = anchor.Attribute(AttrStyle)
	}

	out := Score{
		Season:    SeasonAffinity(s.cond.Season, season),
		Material:  MaterialPenalty(material, s.cond.PrecipitationType, s.cond.PrecipitationProbability),
		Thickness: s.thicknessScore(g, anchor),
	}
	if hasAnchorStyle && style != "" {
		out.Style = StyleCompatibility(anchorStyle, style)
	}
	out.Total = out.Season + out.Style + out.Material + out.Thickness
	return out
}

// SeasonAffinity rates how well a garment's season fits the current one.
func SeasonAffinity(current Season, garmentSeason string) int {
	value := strings.TrimSpace(garmentSeason)
	switch {
	case value == "":
		return 0
	case value == seasonAllYear || value == seasonFourSeason:
		return seasonAllYearScore
	case Season(value) == current:
		return seasonExactScore
	}
	for _, weak := range weakSeasonPairs[current] {
		if Season(value) == weak {
			return seasonWeakScore
		}
	}
	return 0
}

// StyleCompatibility rates a garment's style against the anchor's style.
func StyleCompatibility(anchorStyle, garmentStyle string) int {
	a := strings.TrimSpace(anchorStyle)
	b := strings.TrimSpace(garmentStyle)
	switch {
	case a == "" || b == "":
		return 0
	case a == b:
		return styleExactScore
	case a == styleBasic || b == styleBasic:
		return styleCompatibleScore
	}
	if _, ok := styleCompatibility[a][b]; ok {
		return styleCompatibleScore
	}
	return 0
}

// MaterialPenalty discourages rain or snow sensitive materials on wet days.
func MaterialPenalty(material string, precipitation PrecipitationType, probability float64) int {
	if probability < precipitationPenaltyProbability {
		return 0
	}
	if precipitation != PrecipitationRain && precipitation != PrecipitationSnow {
		return 0
	}
	m := strings.ToLower(material)
	switch {
	case strings.Contains(m, "스웨이드") || strings.Contains(m, "suede"):
		return suedePenalty
	case strings.Contains(m, "레더") || strings.Contains(m, "가죽") || strings.Contains(m, "leather"):
		return leatherPenalty
	default:
		return 0
	}
}

func (s Scorer) thicknessScore(g Garment, anchor *Garment) int {
	raw, ok := g.Attribute(AttrThickness)
	if !ok {
		return 0
	}
	thickness := strings.TrimSpace(raw)

	var base int
	switch g.Category {
	case CategoryTop, CategoryDress:
		base = lookupThickness(primaryThickness, s.cond.DayPersonal, thickness)
	case CategoryOuter:
		base = lookupThickness(outerThickness, s.cond.NightPersonal, thickness)
	}
	if g.Category != CategoryTop {
		return base
	}
	return base + s.layeringBonus(thickness, anchor)
}

// layeringBonus favours tops that layer well under the chosen outer.
func (s Scorer) layeringBonus(topThickness string, anchor *Garment) int {
	if anchor == nil || anchor.Category != CategoryOuter {
		if s.cond.DayPersonal >= 18 && s.cond.DayPersonal <= 22 && topThickness == thicknessMedium {
			return 2
		}
		return 0
	}
	outer, ok := anchor.Attribute(AttrThickness)
	if !ok {
		return 0
	}
	switch strings.TrimSpace(outer) {
	case thicknessThin:
		switch topThickness {
		case thicknessThin:
			return 2
		case thicknessMedium:
			return 1
		}
	case thicknessMedium:
		if topThickness == thicknessThin || topThickness == thicknessMedium {
			return 1
		}
	}
	return 0
}
