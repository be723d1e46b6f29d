package outfit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category identifies the wardrobe slot a garment occupies.
type Category string

const (
	CategoryTop       Category = "TOP"
	CategoryBottom    Category = "BOTTOM"
	CategoryDress     Category = "DRESS"
	CategoryOuter     Category = "OUTER"
	CategoryShoes     Category = "SHOES"
	CategoryHat       Category = "HAT"
	CategoryBag       Category = "BAG"
	CategoryScarf     Category = "SCARF"
	CategoryAccessory Category = "ACCESSORY"
	CategorySocks     Category = "SOCKS"
	CategoryUnderwear Category = "UNDERWEAR"
	CategoryEtc       Category = "ETC"
)

// PrecipitationType mirrors the forecast precipitation codes.
type PrecipitationType string

const (
	PrecipitationNone     PrecipitationType = "NONE"
	PrecipitationRain     PrecipitationType = "RAIN"
	PrecipitationRainSnow PrecipitationType = "RAIN_SNOW"
	PrecipitationSnow     PrecipitationType = "SNOW"
	PrecipitationShower   PrecipitationType = "SHOWER"
)

// Season is expressed in the same vocabulary garments use for their season attribute.
type Season string

const (
	SeasonSpring Season = "봄"
	SeasonSummer Season = "여름"
	SeasonFall   Season = "가을"
	SeasonWinter Season = "겨울"
)

// Attribute names understood by the scorer.
const (
	AttrSeason    = "계절"
	AttrStyle     = "스타일"
	AttrMaterial  = "소재"
	AttrThickness = "두께"
)

// Weather is an already resolved forecast snapshot.
type Weather struct {
	ForecastAt               time.Time         `json:"forecastAt"`
	CreatedAt                time.Time         `json:"createdAt"`
	TemperatureCurrent       float64           `json:"temperatureCurrent"`
	TemperatureMin           *float64          `json:"temperatureMin,omitempty"`
	HumidityCurrent          float64           `json:"humidityCurrent"`
	WindSpeed                *float64          `json:"windSpeed,omitempty"`
	WindSpeedWord            string            `json:"windSpeedWord,omitempty"`
	SkyStatus                string            `json:"skyStatus,omitempty"`
	PrecipitationType        PrecipitationType `json:"precipitationType" validate:"omitempty,oneof=NONE RAIN RAIN_SNOW SNOW SHOWER"`
	PrecipitationProbability float64           `json:"precipitationProbability" validate:"gte=0,lte=100"`
}

// Instant returns the forecast instant, falling back to the creation time.
func (w Weather) Instant() time.Time {
	if !w.ForecastAt.IsZero() {
		return w.ForecastAt
	}
	return w.CreatedAt
}

// NightTemperature is the minimum temperature when known, otherwise the current one.
func (w Weather) NightTemperature() float64 {
	if w.TemperatureMin != nil {
		return *w.TemperatureMin
	}
	return w.TemperatureCurrent
}

// UserProfile carries the per user personalization inputs.
type UserProfile struct {
	UserID                 int64  `json:"userId"`
	TemperatureSensitivity int    `json:"temperatureSensitivity"`
	Gender                 string `json:"gender,omitempty"`
}

// NeutralSensitivity leaves the perceived temperature untouched.
const NeutralSensitivity = 3

// DefaultProfile is used when a user never configured a profile.
func DefaultProfile(userID int64) UserProfile {
	return UserProfile{UserID: userID, TemperatureSensitivity: NeutralSensitivity}
}

// Attribute is a named semantic value attached to a garment.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Garment is a single wardrobe item.
type Garment struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Category   Category    `json:"category"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute resolves a named attribute by exact trimmed name.
func (g Garment) Attribute(name string) (string, bool) {
	key := strings.TrimSpace(name)
	for _, attr := range g.Attributes {
		if strings.TrimSpace(attr.Name) == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Wardrobe is the full candidate set for one recommendation.
type Wardrobe []Garment

// ByCategory returns the garments of a category in wardrobe order.
func (w Wardrobe) ByCategory(category Category) []Garment {
	out := make([]Garment, 0, len(w))
	for _, g := range w {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// Contains reports whether the wardrobe holds a garment with the given id.
func (w Wardrobe) Contains(id uuid.UUID) bool {
	_, ok := w.Find(id)
	return ok
}

// Find looks up a garment by id.
func (w Wardrobe) Find(id uuid.UUID) (Garment, bool) {
	for _, g := range w {
		if g.ID == id {
			return g, true
		}
	}
	return Garment{}, false
}
