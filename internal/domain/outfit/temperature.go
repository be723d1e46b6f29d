package outfit

import (
	"math"
	"strings"
	"time"

	"github.com/yanqian/ootd-recommender/pkg/util"
)

const (
	outerNightThreshold = 20.0
	outerDayThreshold   = 23.0

	marchWinterThreshold     = 12.0
	septemberSummerThreshold = 25.0

	windChillMaxTemp  = 10.0
	windChillMinSpeed = 1.3
)

// PerceivedTemperature converts ambient conditions into a feels-like temperature.
// Between May and September (Seoul time) the wet-bulb heat model is used; otherwise
// wind chill applies when it is cold and windy enough.
func PerceivedTemperature(ta, humidity, wind float64, at time.Time) float64 {
	rh := math.Max(0, math.Min(100, humidity))
	month := at.In(util.Seoul()).Month()
	if month >= time.May && month <= time.September {
		tw := wetBulb(ta, rh)
		return -0.2442 + 0.55399*tw + 0.45535*ta - 0.0022*tw*tw + 0.00278*tw*ta + 3.0
	}
	if ta <= windChillMaxTemp && wind >= windChillMinSpeed {
		v := math.Pow(wind*3.6, 0.16)
		return 13.12 + 0.6215*ta - 11.37*v + 0.3965*ta*v
	}
	return ta
}

// wetBulb is Stull's (2011) approximation.
func wetBulb(ta, rh float64) float64 {
	return ta*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(ta+rh) -
		math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) -
		4.686035
}

// Personalize shifts a perceived temperature by the user's sensitivity.
// Sensitivity is not clamped.
func Personalize(perceived float64, sensitivity int) float64 {
	return perceived + float64(sensitivity-NeutralSensitivity)
}

// ClassifySeason maps the calendar month to a season, letting a cold March read as
// winter and a hot September read as summer.
func ClassifySeason(month time.Month, dayPersonal float64) Season {
	switch month {
	case time.March:
		if dayPersonal <= marchWinterThreshold {
			return SeasonWinter
		}
		return SeasonSpring
	case time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September:
		if dayPersonal >= septemberSummerThreshold {
			return SeasonSummer
		}
		return SeasonFall
	case time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// OuterNeeded reports whether an outer layer should be part of the outfit.
func OuterNeeded(dayPersonal, nightPersonal float64) bool {
	return nightPersonal <= outerNightThreshold || dayPersonal <= outerDayThreshold
}

// ResolveWindSpeed prefers the numeric wind speed and falls back to the qualitative word.
func ResolveWindSpeed(w Weather) float64 {
	if w.WindSpeed != nil {
		return *w.WindSpeed
	}
	switch strings.ToLower(strings.TrimSpace(w.WindSpeedWord)) {
	case "약함", "weak":
		return 2.0
	case "약간 강함", "약간강함", "moderate":
		return 6.5
	case "강함", "strong":
		return 10.0
	default:
		return 0
	}
}

// Conditions is the per call weather context shared by every scoring stage.
type Conditions struct {
	DayPersonal              float64
	NightPersonal            float64
	Season                   Season
	OuterNeeded              bool
	PrecipitationType        PrecipitationType
	PrecipitationProbability float64
}

// DeriveConditions computes the personalised weather context once per call.
func DeriveConditions(user UserProfile, weather Weather) Conditions {
	at := weather.Instant()
	wind := ResolveWindSpeed(weather)
	day := Personalize(PerceivedTemperature(weather.TemperatureCurrent, weather.HumidityCurrent, wind, at), user.TemperatureSensitivity)
	night := Personalize(PerceivedTemperature(weather.NightTemperature(), weather.HumidityCurrent, wind, at), user.TemperatureSensitivity)
	return Conditions{
		DayPersonal:              day,
		NightPersonal:            night,
		Season:                   ClassifySeason(at.In(util.Seoul()).Month(), day),
		OuterNeeded:              OuterNeeded(day, night),
		PrecipitationType:        weather.PrecipitationType,
		PrecipitationProbability: weather.PrecipitationProbability,
	}
}
