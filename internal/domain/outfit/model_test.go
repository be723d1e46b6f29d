package outfit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGarmentAttributeLookup(t *testing.T) {
	g := Garment{Attributes: []Attribute{
		{Name: " 계절 ", Value: "봄"},
		{Name: "계절", Value: "여름"},
		{Name: "Style", Value: "캐주얼"},
	}}

	v, ok := g.Attribute("계절")
	require.True(t, ok)
	require.Equal(t, "봄", v)

	v, ok = g.Attribute("  계절")
	require.True(t, ok)
	require.Equal(t, "봄", v)

	_, ok = g.Attribute("style")
	require.False(t, ok)
	_, ok = g.Attribute("두께")
	require.False(t, ok)
}

func TestWardrobeHelpers(t *testing.T) {
	top := garment("셔츠", CategoryTop)
	other := garment("티", CategoryTop)
	shoes := garment("운동화", CategoryShoes)
	w := Wardrobe{top, shoes, other}

	require.Equal(t, []Garment{top, other}, w.ByCategory(CategoryTop))
	require.Empty(t, w.ByCategory(CategoryDress))
	require.True(t, w.Contains(shoes.ID))
	require.False(t, w.Contains(uuid.New()))

	got, ok := w.Find(other.ID)
	require.True(t, ok)
	require.Equal(t, "티", got.Name)
}

func TestWeatherInstantAndNight(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	forecast := created.Add(3 * time.Hour)

	require.Equal(t, forecast, Weather{ForecastAt: forecast, CreatedAt: created}.Instant())
	require.Equal(t, created, Weather{CreatedAt: created}.Instant())
	require.True(t, Weather{}.Instant().IsZero())

	require.Equal(t, 4.0, Weather{TemperatureCurrent: 4}.NightTemperature())
	require.Equal(t, -1.0, Weather{TemperatureCurrent: 4, TemperatureMin: float(-1)}.NightTemperature())
}

func TestValidateInputs(t *testing.T) {
	require.NoError(t, ValidateInputs(DefaultProfile(1), coolSpringWeather()))

	for _, mutate := range []func(*Weather){
		func(w *Weather) { w.PrecipitationProbability = -1 },
		func(w *Weather) { w.PrecipitationProbability = 100.5 },
		func(w *Weather) { w.PrecipitationType = "FOG" },
		func(w *Weather) { w.ForecastAt = time.Time{} },
	} {
		w := coolSpringWeather()
		mutate(&w)
		require.Error(t, ValidateInputs(DefaultProfile(1), w))
	}

	w := coolSpringWeather()
	w.ForecastAt = time.Time{}
	w.CreatedAt = seoulTime(time.April, 19)
	require.NoError(t, ValidateInputs(DefaultProfile(1), w))
}
